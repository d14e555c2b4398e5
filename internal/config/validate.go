package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateScope(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	parsed, err := url.Parse(c.Source.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("source.base_url %q is not a valid absolute URL", c.Source.BaseURL)
	}
	// nflverse publishes play-by-play releases from the 1999 season onward.
	if c.Source.Season < 1999 {
		return fmt.Errorf("source.season %d is before the first published season (1999)", c.Source.Season)
	}
	if c.Source.TimeoutSeconds <= 0 {
		return errors.New("source.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateScope() error {
	team := c.Scope.Team
	if team == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/nflminer/config.toml"
		}
		return fmt.Errorf("scope.team is required. Set NFLMINER_TEAM env var or edit %s (create with 'nflminer config init')", defaultPath)
	}
	if len(team) < 2 || len(team) > 3 {
		return fmt.Errorf("scope.team %q must be a 2-3 letter team code (e.g. NE)", team)
	}
	for _, r := range team {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("scope.team %q must contain only letters", team)
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.ContainsAny(c.Output.FileName, `/\`) {
		return fmt.Errorf("output.file_name %q must be a bare file name; set the directory via output.dir", c.Output.FileName)
	}
	if c.Output.SampleRows < 0 {
		return errors.New("output.sample_rows must be >= 0")
	}
	if c.Output.TopActivities < 0 {
		return errors.New("output.top_activities must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
