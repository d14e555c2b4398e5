// Package pipeline orchestrates a full derivation run: acquire the raw
// play-by-play feed, transform it into an event log, validate the log
// against its invariants, and persist it. Stages run strictly in order and
// the first failure aborts the run before anything is written.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/nickblackbourn/nfl-process-mining/internal/config"
	"github.com/nickblackbourn/nfl-process-mining/internal/eventlog"
	"github.com/nickblackbourn/nfl-process-mining/internal/logging"
	"github.com/nickblackbourn/nfl-process-mining/internal/nflverse"
	"github.com/nickblackbourn/nfl-process-mining/internal/pbp"
	"github.com/nickblackbourn/nfl-process-mining/internal/report"
	"github.com/nickblackbourn/nfl-process-mining/internal/services"
	"github.com/nickblackbourn/nfl-process-mining/internal/transform"
	"github.com/nickblackbourn/nfl-process-mining/internal/validate"
)

// Stage names, used in logs and error context.
const (
	StageAcquire   = "acquire"
	StageTransform = "transform"
	StageValidate  = "validate"
	StagePersist   = "persist"
)

const lockFileName = "nflminer.lock"

// Pipeline runs the acquire-transform-validate-persist sequence.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	client *nflverse.Client
}

// Result carries everything a caller needs after a successful run.
type Result struct {
	RunID      string
	Log        *eventlog.Log
	Validation validate.Report
	OutputPath string
	Duration   time.Duration
	Summary    report.Summary
}

// New builds a pipeline from a validated configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client, err := nflverse.New(nflverse.Config{
		BaseURL: cfg.Source.BaseURL,
		Season:  cfg.Source.Season,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.Source.TimeoutSeconds) * time.Second,
		},
	}, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "build feed client", "", err)
	}
	return &Pipeline{cfg: cfg, logger: logger, client: client}, nil
}

// Run executes one derivation run. The output directory doubles as the
// single-instance lock scope: two runs writing the same directory would race
// on the event log, so the second one fails fast instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	start := time.Now()

	if err := p.cfg.EnsureOutputDir(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, StagePersist, "prepare output directory", "", err)
	}
	lockPath := filepath.Join(p.cfg.Output.Dir, lockFileName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, StagePersist, "acquire run lock", lockPath, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrPersistence, StagePersist, "acquire run lock",
			"another run is already writing to "+p.cfg.Output.Dir, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("team", p.cfg.Scope.Team),
		logging.Int("season", p.cfg.Source.Season),
		logging.String("feed_url", p.client.FeedURL()),
		logging.String("output", p.cfg.OutputPath()))

	var raw *pbp.Table
	if err := p.stage(ctx, StageAcquire, func(stageCtx context.Context, _ *slog.Logger) error {
		var err error
		raw, err = p.client.FetchPlayByPlay(stageCtx)
		return err
	}); err != nil {
		return nil, err
	}

	var (
		log *eventlog.Log
		rs  transform.Ruleset
	)
	if err := p.stage(ctx, StageTransform, func(stageCtx context.Context, stageLogger *slog.Logger) error {
		var err error
		rs, err = p.ruleset()
		if err != nil {
			return err
		}
		engine := transform.NewEngine(p.cfg.Scope.Team, rs, stageLogger)
		log, err = engine.Run(stageCtx, raw)
		return err
	}); err != nil {
		return nil, err
	}

	var rep validate.Report
	if err := p.stage(ctx, StageValidate, func(stageCtx context.Context, stageLogger *slog.Logger) error {
		rep = validate.RunAll(log, p.cfg.Scope.Team)
		for _, res := range rep.Results {
			if res.Passed {
				stageLogger.Debug("invariant check passed",
					logging.String("check", res.Name),
					logging.String("detail", res.Detail))
				continue
			}
			stageLogger.Error("invariant check failed",
				logging.String("check", res.Name),
				logging.String("detail", res.Detail),
				logging.Int("violations", res.Violations))
		}
		return rep.Err()
	}); err != nil {
		return nil, err
	}

	outputPath := p.cfg.OutputPath()
	if err := p.stage(ctx, StagePersist, func(stageCtx context.Context, stageLogger *slog.Logger) error {
		// The writer itself does not take a context; refuse to start it
		// after cancellation so an interrupted run leaves no file behind.
		if err := stageCtx.Err(); err != nil {
			return err
		}
		if err := eventlog.WriteCSV(outputPath, log); err != nil {
			return services.Wrap(services.ErrPersistence, StagePersist, "write event log", outputPath, err)
		}
		stageLogger.Info("event log written",
			logging.String("path", outputPath),
			logging.Int("events", log.EventCount()))
		return nil
	}); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("events", log.EventCount()),
		logging.Int("cases", log.CaseCount()),
		logging.Duration("elapsed", duration))

	return &Result{
		RunID:      runID,
		Log:        log,
		Validation: rep,
		OutputPath: outputPath,
		Duration:   duration,
		Summary: report.Summary{
			RunID:         runID,
			Team:          p.cfg.Scope.Team,
			Season:        p.cfg.Source.Season,
			FeedURL:       p.client.FeedURL(),
			RulesetOrigin: rs.Origin(),
			OutputPath:    outputPath,
			Duration:      duration,
			Log:           log,
		},
	}, nil
}

func (p *Pipeline) ruleset() (transform.Ruleset, error) {
	if path := p.cfg.Transform.RulesetPath; path != "" {
		rs, err := transform.LoadRuleset(path)
		if err != nil {
			return transform.Ruleset{}, services.Wrap(services.ErrTransformation, StageTransform, "load ruleset", path, err)
		}
		return rs, nil
	}
	return transform.Embedded(), nil
}

// stage wraps a stage function with the start/complete/failure log events
// every stage emits.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, p.logger)

	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()

	if err := fn(stageCtx, stageLogger); err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err))
		return err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
