package validate

import (
	"fmt"
	"strings"

	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
	"github.com/nickblackbourn/nfl-process-mining/internal/services"
)

// Result reports the outcome of a single invariant check.
type Result struct {
	Name       string
	Passed     bool
	Detail     string
	Violations int
}

// Report aggregates the results of every invariant check run against an
// event log.
type Report struct {
	Results []Result
}

// Passed reports whether every check succeeded.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failures returns the checks that did not pass.
func (r Report) Failures() []Result {
	var failures []Result
	for _, res := range r.Results {
		if !res.Passed {
			failures = append(failures, res)
		}
	}
	return failures
}

// Err converts the report into a validation error, or nil when every check
// passed. The message names each failed check so the operator can tell a
// broken feed from a broken ruleset without reading the log file.
func (r Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = fmt.Sprintf("%s (%s)", f.Name, f.Detail)
	}
	return services.Wrap(services.ErrValidation, "validate", "", strings.Join(parts, "; "), nil)
}

// RunAll executes every event log invariant check. team is the configured
// possession team the log must be scoped to.
func RunAll(log *eventlog.Log, team string) Report {
	if log == nil {
		log = &eventlog.Log{}
	}
	return Report{Results: []Result{
		CheckRequiredColumns(log),
		CheckEventsPresent(log),
		CheckCaseIDs(log),
		CheckActivityNames(log),
		CheckTimestamps(log),
		CheckTeamScope(log, team),
		CheckOrdering(log),
	}}
}
