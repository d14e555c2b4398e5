package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Source describes the remote play-by-play feed.
type Source struct {
	BaseURL        string `toml:"base_url"`
	Season         int    `toml:"season"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scope restricts the event log to a single possession team. The dataset is
// deliberately single-team, single-season; Scope names that restriction.
type Scope struct {
	Team string `toml:"team"`
}

// Transform selects the SQL ruleset applied to the raw relation.
type Transform struct {
	// RulesetPath points at an external ruleset file. Empty means the
	// embedded default ruleset shipped with the binary.
	RulesetPath string `toml:"ruleset_path"`
}

// Output controls where the event log is written and how the console
// summary is sized.
type Output struct {
	Dir           string `toml:"dir"`
	FileName      string `toml:"file_name"`
	SampleRows    int    `toml:"sample_rows"`
	TopActivities int    `toml:"top_activities"`
}

// Logging selects the log format and verbosity. Logs always go to stderr.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for nflminer.
//
// Sections by subsystem:
//   - Source: nflverse release URL, season, and fetch timeout
//   - Scope: possession team filter
//   - Transform: ruleset selection (embedded default or external file)
//   - Output: event-log destination and summary sizing
//   - Logging: log format and level
type Config struct {
	Source    Source    `toml:"source"`
	Scope     Scope     `toml:"scope"`
	Transform Transform `toml:"transform"`
	Output    Output    `toml:"output"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns where Load looks when no explicit path is given.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/nflminer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// resolveConfigPath picks the config file for this run. An explicit path is
// taken as-is whether or not the file exists; otherwise the default location
// wins over a project-local nflminer.toml.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("nflminer.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// OutputPath returns the full event-log destination path.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Output.Dir, c.Output.FileName)
}

// EnsureOutputDir creates the output directory when absent.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", c.Output.Dir, err)
	}
	return nil
}

// expandPath turns a configured path into an absolute one. Only a leading
// "~" or "~/" expands to the home directory; "~user" stays literal.
func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") || strings.HasPrefix(pathValue, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, pathValue[1:])
	}
	absolute, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the tilde and absolute-path rules used for every
// configured path. Exported for the CLI's --path handling.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
