// Package report renders the console summary printed after a successful
// run: the run facts, a sample of the derived events, and the activity
// frequency table.
package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
)

// Summary captures everything the post-run report shows.
type Summary struct {
	RunID         string
	Team          string
	Season        int
	FeedURL       string
	RulesetOrigin string
	OutputPath    string
	Duration      time.Duration
	Log           *eventlog.Log
}

// sampleColumns is the wish list for the event sample table. Columns the
// log does not carry are skipped, so custom ruleset projections still
// render.
var sampleColumns = []string{
	eventlog.ColCaseID,
	eventlog.ColActivityName,
	eventlog.ColTransformedTime,
	"down",
	"yards_gained",
}

var printer = message.NewPrinter(language.English)

// Render produces the full console report. sampleRows and topActivities
// size the two tables; zero suppresses the corresponding section.
func Render(s Summary, sampleRows, topActivities int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Event log derived in %s\n\n", s.Duration.Round(time.Millisecond))
	writeFact(&b, "Run", s.RunID)
	writeFact(&b, "Team", s.Team)
	if s.Season > 0 {
		writeFact(&b, "Season", fmt.Sprintf("%d", s.Season))
	}
	writeFact(&b, "Source", s.FeedURL)
	writeFact(&b, "Ruleset", s.RulesetOrigin)
	writeFact(&b, "Events", printer.Sprintf("%d", s.Log.EventCount()))
	writeFact(&b, "Cases", printer.Sprintf("%d", s.Log.CaseCount()))
	writeFact(&b, "Activities", printer.Sprintf("%d", s.Log.ActivityCount()))
	writeFact(&b, "Output", s.OutputPath)

	if section := renderSample(s.Log, sampleRows); section != "" {
		fmt.Fprintf(&b, "\nSample (first %d events):\n%s\n", min(sampleRows, s.Log.EventCount()), section)
	}
	if section := renderTopActivities(s.Log, topActivities); section != "" {
		fmt.Fprintf(&b, "\nTop activities:\n%s\n", section)
	}
	return b.String()
}

func writeFact(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %-12s %s\n", label, value)
}

func renderSample(log *eventlog.Log, rows int) string {
	if log.EventCount() == 0 || rows <= 0 {
		return ""
	}

	available := make([]string, 0, len(sampleColumns))
	have := make(map[string]bool, len(log.Columns))
	for _, col := range log.Columns {
		have[col] = true
	}
	for _, col := range sampleColumns {
		if have[col] {
			available = append(available, col)
		}
	}
	if len(available) == 0 {
		return ""
	}

	var numeric []int
	for i, col := range available {
		if col == "down" || col == "yards_gained" {
			numeric = append(numeric, i+1)
		}
	}

	body := make([][]string, 0, rows)
	for _, event := range log.Head(rows) {
		row := make([]string, len(available))
		for i, col := range available {
			row[i] = event.Attr(col)
		}
		body = append(body, row)
	}
	return renderTable(available, body, numeric...)
}

func renderTopActivities(log *eventlog.Log, limit int) string {
	freqs := log.ActivityFrequencies()
	if len(freqs) == 0 || limit <= 0 {
		return ""
	}
	if limit < len(freqs) {
		freqs = freqs[:limit]
	}

	total := log.EventCount()
	body := make([][]string, 0, len(freqs))
	for _, f := range freqs {
		share := fmt.Sprintf("%.1f%%", 100*float64(f.Count)/float64(total))
		body = append(body, []string{f.Activity, printer.Sprintf("%d", f.Count), share})
	}
	return renderTable([]string{"activity", "events", "share"}, body, 2, 3)
}
