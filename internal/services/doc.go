// Package services defines the pipeline error taxonomy and the context
// carriers shared across stages.
//
// Every fatal pipeline error is tagged with one of the sentinel markers
// (acquisition, transformation, validation, persistence, configuration) via
// Wrap so the CLI can classify failures without string matching. All errors
// are fatal at the pipeline level; there is no per-row recovery.
//
// The context helpers attach the run identifier and current stage name so
// loggers deep in the call tree can annotate records without threading
// those values explicitly.
package services
