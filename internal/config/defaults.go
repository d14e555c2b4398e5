package config

const (
	defaultBaseURL        = "https://github.com/nflverse/nflverse-data/releases/download/pbp"
	defaultSeason         = 2007
	defaultTimeoutSeconds = 120
	defaultTeam           = "NE"
	defaultOutputDir      = "outputs"
	defaultOutputFileName = "nfl_eventlog.csv"
	defaultSampleRows     = 10
	defaultTopActivities  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Source: Source{
			BaseURL:        defaultBaseURL,
			Season:         defaultSeason,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Scope: Scope{
			Team: defaultTeam,
		},
		Output: Output{
			Dir:           defaultOutputDir,
			FileName:      defaultOutputFileName,
			SampleRows:    defaultSampleRows,
			TopActivities: defaultTopActivities,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
