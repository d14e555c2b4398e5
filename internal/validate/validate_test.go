package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
	"github.com/nickblackbourn/nfl-process-mining/internal/services"
)

func buildLog(t *testing.T, rows [][]any) *eventlog.Log {
	t.Helper()
	columns := []string{"case_id", "activity_name", "transformed_time", "posteam"}
	log, err := eventlog.FromRows(columns, rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return log
}

func validLog(t *testing.T) *eventlog.Log {
	t.Helper()
	return buildLog(t, [][]any{
		{"g1_drive_01", "1st Down Pass", "2007-09-09 00:01:00.000", "NE"},
		{"g1_drive_01", "Touchdown", "2007-09-09 00:02:00.000", "NE"},
		{"g1_drive_03", "Punt", "2007-09-09 00:10:00.000", "NE"},
	})
}

func TestRunAllPassesOnValidLog(t *testing.T) {
	report := RunAll(validLog(t), "NE")

	if !report.Passed() {
		t.Fatalf("report failed: %+v", report.Failures())
	}
	if err := report.Err(); err != nil {
		t.Fatalf("Err = %v, want nil", err)
	}
	if len(report.Results) != 7 {
		t.Fatalf("ran %d checks, want 7", len(report.Results))
	}
}

func TestRunAllOnNilLogFailsWithoutPanicking(t *testing.T) {
	report := RunAll(nil, "NE")
	if report.Passed() {
		t.Fatal("nil log passed validation")
	}
}

func TestCheckRequiredColumnsReportsMissing(t *testing.T) {
	log := &eventlog.Log{Columns: []string{"case_id", "posteam"}}
	res := CheckRequiredColumns(log)
	if res.Passed {
		t.Fatal("check passed with missing columns")
	}
	if !strings.Contains(res.Detail, "activity_name") || !strings.Contains(res.Detail, "transformed_time") {
		t.Fatalf("detail %q does not name missing columns", res.Detail)
	}
}

func TestCheckEventsPresentRejectsEmptyLog(t *testing.T) {
	log := buildLog(t, nil)
	if res := CheckEventsPresent(log); res.Passed {
		t.Fatal("empty log passed the emptiness check")
	}
}

func TestPopulationChecksLocateFirstViolation(t *testing.T) {
	log := buildLog(t, [][]any{
		{"g1_drive_01", "Punt", "2007-09-09 00:01:00.000", "NE"},
		{nil, "Kickoff Return", "2007-09-09 00:02:00.000", "NE"},
		{"", "QB Kneel", "2007-09-09 00:03:00.000", "NE"},
	})

	res := CheckCaseIDs(log)
	if res.Passed {
		t.Fatal("check passed with unpopulated case ids")
	}
	if res.Violations != 2 {
		t.Errorf("Violations = %d, want 2", res.Violations)
	}
	if !strings.Contains(res.Detail, "event 2") {
		t.Errorf("detail %q does not locate first violation", res.Detail)
	}

	if res := CheckActivityNames(log); !res.Passed {
		t.Errorf("activity check failed on populated activities: %s", res.Detail)
	}
	if res := CheckTimestamps(log); !res.Passed {
		t.Errorf("timestamp check failed on populated timestamps: %s", res.Detail)
	}
}

func TestCheckTeamScope(t *testing.T) {
	t.Run("mixed teams", func(t *testing.T) {
		log := buildLog(t, [][]any{
			{"c1", "Punt", "t1", "NE"},
			{"c1", "Punt", "t2", "NYJ"},
		})
		res := CheckTeamScope(log, "NE")
		if res.Passed {
			t.Fatal("mixed teams passed the scope check")
		}
		if !strings.Contains(res.Detail, "NYJ") {
			t.Errorf("detail %q does not name the leaked team", res.Detail)
		}
	})

	t.Run("wrong team", func(t *testing.T) {
		log := buildLog(t, [][]any{{"c1", "Punt", "t1", "NYJ"}})
		res := CheckTeamScope(log, "NE")
		if res.Passed {
			t.Fatal("wrong team passed the scope check")
		}
	})

	t.Run("column missing", func(t *testing.T) {
		log, err := eventlog.FromRows(
			[]string{"case_id", "activity_name", "transformed_time"},
			[][]any{{"c1", "Punt", "t1"}})
		if err != nil {
			t.Fatal(err)
		}
		if res := CheckTeamScope(log, "NE"); res.Passed {
			t.Fatal("missing posteam column passed the scope check")
		}
	})

	t.Run("empty log defers to emptiness check", func(t *testing.T) {
		if res := CheckTeamScope(buildLog(t, nil), "NE"); !res.Passed {
			t.Fatalf("empty log failed the scope check: %s", res.Detail)
		}
	})
}

func TestCheckOrdering(t *testing.T) {
	t.Run("interleaved cases", func(t *testing.T) {
		log := buildLog(t, [][]any{
			{"c1", "a", "t1", "NE"},
			{"c2", "a", "t1", "NE"},
			{"c1", "a", "t2", "NE"},
		})
		res := CheckOrdering(log)
		if res.Passed {
			t.Fatal("interleaved cases passed the ordering check")
		}
	})

	t.Run("equal timestamps within case", func(t *testing.T) {
		log := buildLog(t, [][]any{
			{"c1", "a", "2007-09-09 00:01:00.000", "NE"},
			{"c1", "b", "2007-09-09 00:01:00.000", "NE"},
		})
		res := CheckOrdering(log)
		if res.Passed {
			t.Fatal("duplicate timestamps passed the ordering check")
		}
		if !strings.Contains(res.Detail, "does not advance") {
			t.Errorf("detail %q does not describe the stall", res.Detail)
		}
	})

	t.Run("regressing timestamps within case", func(t *testing.T) {
		log := buildLog(t, [][]any{
			{"c1", "a", "2007-09-09 00:02:00.000", "NE"},
			{"c1", "b", "2007-09-09 00:01:00.000", "NE"},
		})
		if res := CheckOrdering(log); res.Passed {
			t.Fatal("regressing timestamps passed the ordering check")
		}
	})

	t.Run("single event passes", func(t *testing.T) {
		log := buildLog(t, [][]any{{"c1", "a", "t1", "NE"}})
		if res := CheckOrdering(log); !res.Passed {
			t.Fatalf("single event failed ordering: %s", res.Detail)
		}
	})
}

func TestReportErrNamesEveryFailedCheck(t *testing.T) {
	log := buildLog(t, [][]any{
		{"", "Punt", "t1", "NYJ"},
	})
	report := RunAll(log, "NE")

	err := report.Err()
	if err == nil {
		t.Fatal("Err = nil for failing report")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error %v is not a validation error", err)
	}
	for _, want := range []string{"case identifiers", "possession team scope"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
