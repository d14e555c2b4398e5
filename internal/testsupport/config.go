package testsupport

import (
	"testing"

	"github.com/nickblackbourn/nfl-process-mining/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp output directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Source.TimeoutSeconds = 5

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithTeam overrides the possession team filter.
func WithTeam(team string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scope.Team = team
	}
}

// WithBaseURL points the feed source at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Source.BaseURL = url
	}
}

// WithSeason overrides the season.
func WithSeason(season int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Source.Season = season
	}
}

// WithRulesetPath points the transform at an external ruleset file.
func WithRulesetPath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transform.RulesetPath = path
	}
}

// WithSampleRows overrides the console sample size.
func WithSampleRows(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Output.SampleRows = n
	}
}
