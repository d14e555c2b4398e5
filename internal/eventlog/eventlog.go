// Package eventlog holds the process-mining event log produced by the
// transformation: one event per play, grouped into cases by drive and
// ordered by derived timestamp.
package eventlog

import (
	"fmt"
	"sort"
	"strconv"
)

// Core columns every event log must carry. The remaining columns are
// descriptive passthroughs and vary with the ruleset projection.
const (
	ColCaseID          = "case_id"
	ColActivityName    = "activity_name"
	ColTransformedTime = "transformed_time"
)

// Event is a single process-mining event. Attrs holds the passthrough
// columns by name; SQL NULLs arrive as empty strings.
type Event struct {
	CaseID          string
	ActivityName    string
	TransformedTime string
	Attrs           map[string]string
}

// Attr returns the named column value for the event, core or passthrough.
func (e Event) Attr(column string) string {
	switch column {
	case ColCaseID:
		return e.CaseID
	case ColActivityName:
		return e.ActivityName
	case ColTransformedTime:
		return e.TransformedTime
	default:
		return e.Attrs[column]
	}
}

// Log is an ordered event log. Columns preserves the ruleset projection
// order and always includes the three core columns.
type Log struct {
	Columns []string
	Events  []Event
}

// Frequency is an activity name with its occurrence count.
type Frequency struct {
	Activity string
	Count    int
}

// FromRows builds a Log from a query result. Rows must be in final output
// order; values may be of any SQL scalar type and are rendered to strings.
// The projection must include the three core columns.
func FromRows(columns []string, rows [][]any) (*Log, error) {
	core := map[string]int{ColCaseID: -1, ColActivityName: -1, ColTransformedTime: -1}
	for i, col := range columns {
		if _, ok := core[col]; ok {
			core[col] = i
		}
	}
	for _, col := range []string{ColCaseID, ColActivityName, ColTransformedTime} {
		if core[col] < 0 {
			return nil, fmt.Errorf("result set does not project required column %q", col)
		}
	}

	log := &Log{
		Columns: append([]string(nil), columns...),
		Events:  make([]Event, 0, len(rows)),
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i+1, len(row), len(columns))
		}
		event := Event{Attrs: make(map[string]string, len(columns)-3)}
		for j, col := range columns {
			value := formatValue(row[j])
			switch col {
			case ColCaseID:
				event.CaseID = value
			case ColActivityName:
				event.ActivityName = value
			case ColTransformedTime:
				event.TransformedTime = value
			default:
				event.Attrs[col] = value
			}
		}
		log.Events = append(log.Events, event)
	}
	return log, nil
}

// EventCount reports the number of events in the log.
func (l *Log) EventCount() int {
	if l == nil {
		return 0
	}
	return len(l.Events)
}

// CaseCount reports the number of distinct cases.
func (l *Log) CaseCount() int {
	if l == nil {
		return 0
	}
	seen := make(map[string]struct{})
	for _, e := range l.Events {
		seen[e.CaseID] = struct{}{}
	}
	return len(seen)
}

// ActivityCount reports the number of distinct activity names.
func (l *Log) ActivityCount() int {
	if l == nil {
		return 0
	}
	seen := make(map[string]struct{})
	for _, e := range l.Events {
		seen[e.ActivityName] = struct{}{}
	}
	return len(seen)
}

// ActivityFrequencies returns activities ordered by descending count, ties
// broken alphabetically so reports are stable.
func (l *Log) ActivityFrequencies() []Frequency {
	if l == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, e := range l.Events {
		counts[e.ActivityName]++
	}
	freqs := make([]Frequency, 0, len(counts))
	for activity, count := range counts {
		freqs = append(freqs, Frequency{Activity: activity, Count: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Activity < freqs[j].Activity
	})
	return freqs
}

// Head returns the first n events in log order.
func (l *Log) Head(n int) []Event {
	if l == nil || n <= 0 {
		return nil
	}
	if n > len(l.Events) {
		n = len(l.Events)
	}
	return l.Events[:n]
}

// Row renders an event in the log's column order, ready for CSV output.
func (l *Log) Row(e Event) []string {
	row := make([]string, len(l.Columns))
	for i, col := range l.Columns {
		row[i] = e.Attr(col)
	}
	return row
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(value)
	}
}
