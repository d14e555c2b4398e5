// Package transform executes the SQL ruleset that derives a process-mining
// event log from raw play-by-play data.
//
// The ruleset is data, not code: a sequence of SQL statements executed in
// order against an in-memory SQLite database. The driver loads the raw plays
// into raw_data, records the configured possession team in run_scope, runs
// every statement, and reads final_cleaned_dataset back. Anything honoring
// that relation contract can replace the built-in ruleset.
package transform
