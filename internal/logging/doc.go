// Package logging builds the slog loggers used across the pipeline.
//
// Two output formats are supported: a compact console format for humans and
// JSON for machine collection. Loggers carry standardized field keys
// (component, stage, run_id, event_type) so a whole run can be correlated
// from its log stream. Stage logs are written to stderr; stdout is reserved
// for the event-log summary report.
package logging
