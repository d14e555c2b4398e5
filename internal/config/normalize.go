package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeScope()
	if err := c.normalizeTransform(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeSource() error {
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaultBaseURL
	}
	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeScope() {
	if c.Scope.Team == "" {
		if value, ok := os.LookupEnv("NFLMINER_TEAM"); ok {
			c.Scope.Team = value
		}
	}
	c.Scope.Team = strings.ToUpper(strings.TrimSpace(c.Scope.Team))
}

func (c *Config) normalizeTransform() error {
	c.Transform.RulesetPath = strings.TrimSpace(c.Transform.RulesetPath)
	if c.Transform.RulesetPath == "" {
		return nil
	}
	expanded, err := expandPath(c.Transform.RulesetPath)
	if err != nil {
		return fmt.Errorf("transform.ruleset_path: %w", err)
	}
	c.Transform.RulesetPath = expanded
	return nil
}

func (c *Config) normalizeOutput() error {
	var err error
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = defaultOutputDir
	}
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	c.Output.FileName = strings.TrimSpace(c.Output.FileName)
	if c.Output.FileName == "" {
		c.Output.FileName = defaultOutputFileName
	}
	if c.Output.SampleRows == 0 {
		c.Output.SampleRows = defaultSampleRows
	}
	if c.Output.TopActivities == 0 {
		c.Output.TopActivities = defaultTopActivities
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
