package report

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws one bordered table. rightAlign lists 1-based column
// numbers holding numbers; every other column, and all headers, stay
// left-aligned.
func renderTable(header []string, rows [][]string, rightAlign ...int) string {
	if len(header) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(header))
		for i := range tr {
			tr[i] = ""
			if i < len(row) {
				tr[i] = row[i]
			}
		}
		tw.AppendRow(tr)
	}

	if len(rightAlign) > 0 {
		configs := make([]table.ColumnConfig, 0, len(rightAlign))
		for _, col := range rightAlign {
			configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}
