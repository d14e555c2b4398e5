package pbp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is the raw play-by-play relation exactly as delivered by the
// upstream feed: a header plus one row per play. It is never mutated after
// parsing; the transformation engine reads it into the relational store.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ParseCSV reads a play-by-play payload into a Table. Every record must
// carry the same number of fields as the header.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty payload: missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("header column %q appears more than once", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// NumRows reports how many plays the table holds.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	for i, col := range t.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// HasColumn reports whether the named column was delivered by the feed.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// IsMissing reports whether a raw cell is a missing value. nflverse CSVs are
// R exports, so both the empty string and the literal NA mean NULL.
func IsMissing(value string) bool {
	return value == "" || value == "NA"
}
