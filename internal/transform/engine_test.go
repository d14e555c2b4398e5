package transform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
	"github.com/nickblackbourn/nfl-process-mining/internal/pbp"
	"github.com/nickblackbourn/nfl-process-mining/internal/services"
	"github.com/nickblackbourn/nfl-process-mining/internal/testsupport"
)

func runSampleGame(t *testing.T) *eventlog.Log {
	t.Helper()
	engine := NewEngine("NE", Embedded(), nil)
	log, err := engine.Run(context.Background(), testsupport.Feed(testsupport.SampleGame()...))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return log
}

func TestEngineDerivesEventLogFromSampleGame(t *testing.T) {
	log := runSampleGame(t)

	if got := log.EventCount(); got != 12 {
		t.Fatalf("EventCount = %d, want 12", got)
	}
	if got := log.CaseCount(); got != 3 {
		t.Fatalf("CaseCount = %d, want 3", got)
	}

	wantColumns := []string{
		"case_id", "activity_name", "transformed_time",
		"posteam", "defteam", "qtr", "down", "ydstogo", "yards_gained", "play_type",
	}
	if !reflect.DeepEqual(log.Columns, wantColumns) {
		t.Fatalf("Columns = %v, want %v", log.Columns, wantColumns)
	}

	first := log.Events[0]
	if first.CaseID != "2007_01_NE_NYJ_drive_01" {
		t.Errorf("first case_id = %q", first.CaseID)
	}
	if first.ActivityName != "1st Down Pass" {
		t.Errorf("first activity = %q", first.ActivityName)
	}
	if first.TransformedTime != "2007-09-09 00:01:00.000" {
		t.Errorf("first transformed_time = %q", first.TransformedTime)
	}
	for col, want := range map[string]string{
		"posteam": "NE", "defteam": "NYJ", "qtr": "1", "down": "1",
		"ydstogo": "10", "yards_gained": "7", "play_type": "pass",
	} {
		if got := first.Attr(col); got != want {
			t.Errorf("first %s = %q, want %q", col, got, want)
		}
	}

	wantActivities := []string{
		"1st Down Pass", "Explosive Run", "Explosive Pass", "Touchdown",
		"1st Down Run", "2nd Down Pass", "3rd Down Pass", "Punt",
		"1st Down Run", "2nd Down Pass", "Explosive Run", "Interception Thrown",
	}
	for i, want := range wantActivities {
		if got := log.Events[i].ActivityName; got != want {
			t.Errorf("event %d activity = %q, want %q", i, got, want)
		}
	}
}

func TestEngineOrdersEventsWithinEachCase(t *testing.T) {
	log := runSampleGame(t)

	var prev eventlog.Event
	for i, e := range log.Events {
		if i == 0 {
			prev = e
			continue
		}
		if e.CaseID < prev.CaseID {
			t.Fatalf("event %d case %q sorts before %q", i, e.CaseID, prev.CaseID)
		}
		if e.CaseID == prev.CaseID && e.TransformedTime <= prev.TransformedTime {
			t.Fatalf("event %d time %q not after %q within case %q",
				i, e.TransformedTime, prev.TransformedTime, e.CaseID)
		}
		prev = e
	}
}

func TestEngineScopesToPossessionTeam(t *testing.T) {
	feed := testsupport.Feed(testsupport.SampleGame()...)

	log, err := NewEngine("NYJ", Embedded(), nil).Run(context.Background(), feed)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := log.EventCount(); got != 2 {
		t.Fatalf("NYJ events = %d, want 2", got)
	}
	for _, e := range log.Events {
		if e.Attr("posteam") != "NYJ" {
			t.Errorf("event %+v leaked into NYJ scope", e)
		}
	}

	log, err = NewEngine("MIA", Embedded(), nil).Run(context.Background(), feed)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := log.EventCount(); got != 0 {
		t.Fatalf("MIA events = %d, want 0", got)
	}
}

func TestEngineBreaksSameSecondTiesInFeedOrder(t *testing.T) {
	base := testsupport.Play{
		GameID: "2007_01_NE_NYJ", GameDate: "2007-09-09",
		Posteam: "NE", Defteam: "NYJ", Drive: 1, Qtr: 1,
		YardsToGo: 10, PlayType: "pass",
	}
	first := base
	first.Down = 1
	first.SecondsRemaining = 3500
	second := base
	second.Down = 2
	second.SecondsRemaining = 3500
	second.PlayType = "run"
	third := base
	third.Down = 3
	third.SecondsRemaining = 3400

	log, err := NewEngine("NE", Embedded(), nil).Run(context.Background(), testsupport.Feed(first, second, third))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if log.EventCount() != 3 {
		t.Fatalf("EventCount = %d, want 3", log.EventCount())
	}

	wantTimes := []string{
		"2007-09-09 00:01:40.000",
		"2007-09-09 00:01:40.001",
		"2007-09-09 00:03:20.000",
	}
	for i, want := range wantTimes {
		if got := log.Events[i].TransformedTime; got != want {
			t.Errorf("event %d time = %q, want %q", i, got, want)
		}
	}
	if log.Events[0].ActivityName != "1st Down Pass" || log.Events[1].ActivityName != "2nd Down Run" {
		t.Errorf("tied plays out of feed order: %q then %q",
			log.Events[0].ActivityName, log.Events[1].ActivityName)
	}
}

func TestEngineActivityDerivation(t *testing.T) {
	play := func(mutate func(*testsupport.Play)) testsupport.Play {
		p := testsupport.Play{
			GameID: "2007_01_NE_NYJ", GameDate: "2007-09-09",
			Posteam: "NE", Defteam: "NYJ", Drive: 1, Qtr: 1,
			Down: 1, YardsToGo: 10, SecondsRemaining: 3000,
		}
		mutate(&p)
		return p
	}

	cases := []struct {
		name   string
		play   testsupport.Play
		expect string
	}{
		{"touchdown outranks explosive pass", play(func(p *testsupport.Play) {
			p.PlayType = "pass"
			p.YardsGained = 45
			p.Touchdown = true
		}), "Touchdown"},
		{"interception", play(func(p *testsupport.Play) {
			p.PlayType = "pass"
			p.Interception = true
		}), "Interception Thrown"},
		{"fumble lost outranks run label", play(func(p *testsupport.Play) {
			p.PlayType = "run"
			p.YardsGained = 14
			p.FumbleLost = true
		}), "Fumble Lost"},
		{"field goal made", play(func(p *testsupport.Play) {
			p.PlayType = "field_goal"
			p.FieldGoalResult = "made"
		}), "Field Goal Made"},
		{"field goal missed", play(func(p *testsupport.Play) {
			p.PlayType = "field_goal"
			p.FieldGoalResult = "missed"
		}), "Field Goal Missed"},
		{"field goal blocked counts as missed", play(func(p *testsupport.Play) {
			p.PlayType = "field_goal"
			p.FieldGoalResult = "blocked"
		}), "Field Goal Missed"},
		{"extra point", play(func(p *testsupport.Play) {
			p.PlayType = "extra_point"
		}), "Extra Point Attempt"},
		{"kickoff", play(func(p *testsupport.Play) {
			p.PlayType = "kickoff"
		}), "Kickoff Return"},
		{"qb kneel", play(func(p *testsupport.Play) {
			p.PlayType = "qb_kneel"
		}), "QB Kneel"},
		{"qb spike", play(func(p *testsupport.Play) {
			p.PlayType = "qb_spike"
		}), "QB Spike"},
		{"no play", play(func(p *testsupport.Play) {
			p.PlayType = "no_play"
			p.YardsGained = 30
		}), "No Play"},
		{"explosive pass at threshold", play(func(p *testsupport.Play) {
			p.PlayType = "pass"
			p.YardsGained = 20
		}), "Explosive Pass"},
		{"explosive run at threshold", play(func(p *testsupport.Play) {
			p.PlayType = "run"
			p.YardsGained = 10
		}), "Explosive Run"},
		{"fourth down pass", play(func(p *testsupport.Play) {
			p.PlayType = "pass"
			p.Down = 4
			p.YardsGained = 19
		}), "4th Down Pass"},
		{"pass without a down", play(func(p *testsupport.Play) {
			p.PlayType = "pass"
			p.Down = 0
		}), "Pass"},
		{"run without a down", play(func(p *testsupport.Play) {
			p.PlayType = "run"
			p.Down = 0
		}), "Run"},
		{"missing play type", play(func(p *testsupport.Play) {
			p.PlayType = ""
		}), "Other Play"},
		{"unmapped play type", play(func(p *testsupport.Play) {
			p.PlayType = "penalty"
		}), "Other Play"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := NewEngine("NE", Embedded(), nil).Run(context.Background(), testsupport.Feed(tc.play))
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if log.EventCount() != 1 {
				t.Fatalf("EventCount = %d, want 1", log.EventCount())
			}
			if got := log.Events[0].ActivityName; got != tc.expect {
				t.Fatalf("activity = %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestEngineIsDeterministic(t *testing.T) {
	feed := testsupport.Feed(testsupport.SampleGame()...)
	engine := NewEngine("NE", Embedded(), nil)

	one, err := engine.Run(context.Background(), feed)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	two, err := engine.Run(context.Background(), feed)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(one, two) {
		t.Fatal("two runs over the same feed produced different logs")
	}
}

func TestEngineRejectsFeedMissingRequiredColumns(t *testing.T) {
	raw := &pbp.Table{Columns: []string{"game_id", "posteam"}, Rows: nil}

	_, err := NewEngine("NE", Embedded(), nil).Run(context.Background(), raw)
	if err == nil {
		t.Fatal("expected error for incomplete feed")
	}
	if !errors.Is(err, services.ErrTransformation) {
		t.Errorf("error %v is not a transformation error", err)
	}
	if !strings.Contains(err.Error(), "drive") {
		t.Errorf("error %q does not name a missing column", err)
	}
}

func TestEngineRejectsFeedWithDerivedColumnName(t *testing.T) {
	columns := append([]string{"case_id"}, pbp.RequiredColumns()...)
	raw := &pbp.Table{Columns: columns}

	_, err := NewEngine("NE", Embedded(), nil).Run(context.Background(), raw)
	if err == nil {
		t.Fatal("expected error for colliding column")
	}
	if !strings.Contains(err.Error(), "case_id") {
		t.Errorf("error %q does not name the collision", err)
	}
}

func TestEngineNullCaseComponentsSurviveToValidation(t *testing.T) {
	p := testsupport.Play{
		GameDate: "2007-09-09", Posteam: "NE", Defteam: "NYJ",
		Drive: 1, Qtr: 1, Down: 1, YardsToGo: 10,
		PlayType: "pass", SecondsRemaining: 3000,
	}
	// GameID left empty: loads as NULL, so case derivation yields NULL
	// rather than a fabricated identifier.
	log, err := NewEngine("NE", Embedded(), nil).Run(context.Background(), testsupport.Feed(p))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if log.EventCount() != 1 {
		t.Fatalf("EventCount = %d, want 1", log.EventCount())
	}
	if got := log.Events[0].CaseID; got != "" {
		t.Fatalf("case_id = %q, want empty for NULL", got)
	}
}

func TestEngineRunsExternalRuleset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.sql")
	custom := `
CREATE TABLE final_cleaned_dataset AS
SELECT posteam || '_all' AS case_id,
       play_type AS activity_name,
       printf('%06d', rowid) AS transformed_time
FROM raw_data
WHERE posteam = (SELECT team FROM run_scope);
`
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := LoadRuleset(path)
	if err != nil {
		t.Fatalf("LoadRuleset: %v", err)
	}

	log, err := NewEngine("NE", rs, nil).Run(context.Background(), testsupport.Feed(testsupport.SampleGame()...))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if log.EventCount() != 12 {
		t.Fatalf("EventCount = %d, want 12", log.EventCount())
	}
	if log.Events[0].CaseID != "NE_all" {
		t.Fatalf("case_id = %q", log.Events[0].CaseID)
	}
}

func TestEngineReportsRulesetWithoutResultTable(t *testing.T) {
	rs := Ruleset{origin: "test", text: "CREATE VIEW only_a_view AS SELECT 1 AS x;"}

	_, err := NewEngine("NE", rs, nil).Run(context.Background(), testsupport.Feed(testsupport.SampleGame()...))
	if err == nil {
		t.Fatal("expected error when ruleset creates no result table")
	}
	if !errors.Is(err, services.ErrTransformation) {
		t.Errorf("error %v is not a transformation error", err)
	}
	if !strings.Contains(err.Error(), ResultTableName) {
		t.Errorf("error %q does not name the missing relation", err)
	}
}

func TestEngineReportsFailingStatementPosition(t *testing.T) {
	rs := Ruleset{origin: "test", text: `
CREATE TABLE scratch (x);
CREATE TABLE final_cleaned_dataset AS SELECT * FROM missing_relation;
`}

	_, err := NewEngine("NE", rs, nil).Run(context.Background(), testsupport.Feed(testsupport.SampleGame()...))
	if err == nil {
		t.Fatal("expected error from failing statement")
	}
	if !strings.Contains(err.Error(), "statement 2 of 2") {
		t.Errorf("error %q does not locate the failing statement", err)
	}
}

func TestEngineHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine("NE", Embedded(), nil).Run(ctx, testsupport.Feed(testsupport.SampleGame()...))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not preserve context.Canceled", err)
	}
}
