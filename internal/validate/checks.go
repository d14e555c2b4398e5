package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
)

// teamColumn is the passthrough column the scope check inspects.
const teamColumn = "posteam"

// CheckRequiredColumns verifies the log carries the three core event
// columns. The remaining checks assume they exist.
func CheckRequiredColumns(log *eventlog.Log) Result {
	const name = "required columns"

	have := make(map[string]bool, len(log.Columns))
	for _, col := range log.Columns {
		have[col] = true
	}
	var missing []string
	for _, col := range []string{eventlog.ColCaseID, eventlog.ColActivityName, eventlog.ColTransformedTime} {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Result{
			Name:       name,
			Detail:     "missing " + strings.Join(missing, ", "),
			Violations: len(missing),
		}
	}
	return Result{Name: name, Passed: true, Detail: "all core columns present"}
}

// CheckEventsPresent verifies the log is not empty. An empty log means the
// scope filter matched nothing, which is never a useful result.
func CheckEventsPresent(log *eventlog.Log) Result {
	const name = "events present"

	if log.EventCount() == 0 {
		return Result{Name: name, Detail: "event log is empty", Violations: 1}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d events across %d cases", log.EventCount(), log.CaseCount()),
	}
}

// CheckCaseIDs verifies every event belongs to a case.
func CheckCaseIDs(log *eventlog.Log) Result {
	return checkPopulated(log, "case identifiers", func(e eventlog.Event) string { return e.CaseID })
}

// CheckActivityNames verifies every event names an activity.
func CheckActivityNames(log *eventlog.Log) Result {
	return checkPopulated(log, "activity names", func(e eventlog.Event) string { return e.ActivityName })
}

// CheckTimestamps verifies every event carries a derived timestamp.
func CheckTimestamps(log *eventlog.Log) Result {
	return checkPopulated(log, "timestamps", func(e eventlog.Event) string { return e.TransformedTime })
}

func checkPopulated(log *eventlog.Log, name string, value func(eventlog.Event) string) Result {
	missing := 0
	first := 0
	for i, e := range log.Events {
		if strings.TrimSpace(value(e)) == "" {
			missing++
			if missing == 1 {
				first = i + 1
			}
		}
	}
	if missing > 0 {
		return Result{
			Name:       name,
			Detail:     fmt.Sprintf("%d events unpopulated (first at event %d)", missing, first),
			Violations: missing,
		}
	}
	return Result{Name: name, Passed: true, Detail: "populated on every event"}
}

// CheckTeamScope verifies the log contains exactly one possession team and
// that it is the configured one. Any other value means the scope filter
// leaked plays it should have dropped.
func CheckTeamScope(log *eventlog.Log, team string) Result {
	const name = "possession team scope"

	hasColumn := false
	for _, col := range log.Columns {
		if col == teamColumn {
			hasColumn = true
			break
		}
	}
	if !hasColumn {
		return Result{Name: name, Detail: "column " + teamColumn + " missing", Violations: 1}
	}

	distinct := make(map[string]int)
	for _, e := range log.Events {
		distinct[e.Attr(teamColumn)]++
	}
	if len(distinct) == 0 {
		// Nothing to inspect; the emptiness check reports this.
		return Result{Name: name, Passed: true, Detail: "no events to scope"}
	}

	teams := make([]string, 0, len(distinct))
	for value := range distinct {
		teams = append(teams, value)
	}
	sort.Strings(teams)

	if len(teams) > 1 {
		return Result{
			Name:       name,
			Detail:     fmt.Sprintf("%d distinct teams: %s", len(teams), strings.Join(teams, ", ")),
			Violations: len(teams) - 1,
		}
	}
	if teams[0] != team {
		return Result{
			Name:       name,
			Detail:     fmt.Sprintf("scoped to %q, expected %q", teams[0], team),
			Violations: 1,
		}
	}
	return Result{Name: name, Passed: true, Detail: "all events belong to " + team}
}

// CheckOrdering verifies events are sorted by case and that timestamps
// strictly increase within each case. Equal timestamps are a violation: the
// tie-break suffix exists precisely so no two events in a case share one.
func CheckOrdering(log *eventlog.Log) Result {
	const name = "event ordering"

	violations := 0
	first := 0
	detail := ""
	for i := 1; i < len(log.Events); i++ {
		prev, cur := log.Events[i-1], log.Events[i]
		var problem string
		switch {
		case cur.CaseID < prev.CaseID:
			problem = fmt.Sprintf("case %q follows %q", cur.CaseID, prev.CaseID)
		case cur.CaseID == prev.CaseID && cur.TransformedTime <= prev.TransformedTime:
			problem = fmt.Sprintf("time %q does not advance past %q in case %q",
				cur.TransformedTime, prev.TransformedTime, cur.CaseID)
		default:
			continue
		}
		violations++
		if violations == 1 {
			first = i + 1
			detail = problem
		}
	}
	if violations > 0 {
		return Result{
			Name:       name,
			Detail:     fmt.Sprintf("%d misordered events (first at event %d: %s)", violations, first, detail),
			Violations: violations,
		}
	}
	return Result{Name: name, Passed: true, Detail: "cases ordered, timestamps strictly increasing"}
}
