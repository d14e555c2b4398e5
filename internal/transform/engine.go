package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
	"github.com/nickblackbourn/nfl-process-mining/internal/logging"
	"github.com/nickblackbourn/nfl-process-mining/internal/pbp"
	"github.com/nickblackbourn/nfl-process-mining/internal/relstore"
	"github.com/nickblackbourn/nfl-process-mining/internal/services"
)

// derivedColumns are names the ruleset introduces. The feed must not carry
// columns with these names or the derivation would be ambiguous.
var derivedColumns = []string{
	eventlog.ColCaseID,
	eventlog.ColActivityName,
	eventlog.ColTransformedTime,
	"play_seq",
	"elapsed_seconds",
}

// Engine turns a raw play-by-play table into an event log by executing a
// ruleset against a private in-memory relational store. Engines are cheap;
// each run opens and discards its own database, so no state leaks between
// runs.
type Engine struct {
	team    string
	ruleset Ruleset
	logger  *slog.Logger
}

// NewEngine returns an engine scoped to the given possession team.
func NewEngine(team string, ruleset Ruleset, logger *slog.Logger) *Engine {
	return &Engine{
		team:    team,
		ruleset: ruleset,
		logger:  logging.NewComponentLogger(logger, "transform"),
	}
}

// Run executes the ruleset over the raw table and reads the resulting event
// log back. All failures carry the transformation error marker.
func (e *Engine) Run(ctx context.Context, raw *pbp.Table) (*eventlog.Log, error) {
	if raw == nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "load raw plays", "no raw table", nil)
	}
	if err := checkFeedColumns(raw); err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "check feed columns", "", err)
	}

	store, err := relstore.OpenMemory()
	if err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "open relational store", "", err)
	}
	defer store.Close()

	if err := store.CreateTable(ctx, RawTableName, raw.Columns); err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "load raw plays", "", err)
	}
	if err := store.InsertRows(ctx, RawTableName, raw.Columns, raw.Rows, pbp.IsMissing); err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "load raw plays", "", err)
	}
	e.logger.DebugContext(ctx, "raw plays loaded",
		logging.Int("rows", raw.NumRows()),
		logging.Int("columns", len(raw.Columns)))

	if err := store.CreateTable(ctx, ScopeTableName, []string{"team"}); err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "establish run scope", "", err)
	}
	if err := store.InsertRows(ctx, ScopeTableName, []string{"team"}, [][]string{{e.team}}, nil); err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "establish run scope", "", err)
	}

	stmts, err := e.ruleset.Statements()
	if err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "parse ruleset", e.ruleset.Origin(), err)
	}
	for i, stmt := range stmts {
		if err := store.Exec(ctx, stmt); err != nil {
			op := fmt.Sprintf("ruleset statement %d of %d", i+1, len(stmts))
			return nil, services.Wrap(services.ErrTransformation, "transform", op, statementPreview(stmt), err)
		}
	}
	e.logger.DebugContext(ctx, "ruleset executed",
		logging.String("ruleset", e.ruleset.Origin()),
		logging.Int("statements", len(stmts)))

	exists, err := store.TableExists(ctx, ResultTableName)
	if err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "read result", "", err)
	}
	if !exists {
		msg := fmt.Sprintf("ruleset did not create relation %q", ResultTableName)
		return nil, services.Wrap(services.ErrTransformation, "transform", "read result", msg, nil)
	}

	columns, rows, err := store.QueryTable(ctx, ResultTableName)
	if err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "read result", "", err)
	}
	log, err := eventlog.FromRows(columns, rows)
	if err != nil {
		return nil, services.Wrap(services.ErrTransformation, "transform", "read result", "", err)
	}

	e.logger.InfoContext(ctx, "ruleset applied",
		logging.String("team", e.team),
		logging.Int("events", log.EventCount()),
		logging.Int("cases", log.CaseCount()),
		logging.Int("activities", log.ActivityCount()))
	return log, nil
}

// checkFeedColumns verifies the raw table satisfies the feed contract before
// any SQL runs, so a malformed feed fails with a named column instead of a
// ruleset error.
func checkFeedColumns(raw *pbp.Table) error {
	var missing []string
	for _, col := range pbp.RequiredColumns() {
		if !raw.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("feed is missing required columns: %s", strings.Join(missing, ", "))
	}
	for _, col := range derivedColumns {
		if raw.HasColumn(col) {
			return fmt.Errorf("feed column %q collides with a derived column", col)
		}
	}
	return nil
}

func statementPreview(stmt string) string {
	fields := strings.Fields(stmt)
	preview := strings.Join(fields, " ")
	const max = 72
	if len(preview) > max {
		preview = preview[:max] + "..."
	}
	return preview
}
