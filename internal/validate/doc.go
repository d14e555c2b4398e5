// Package validate checks a derived event log against the invariants the
// pipeline promises: core columns populated, a single possession team, and
// strictly increasing timestamps within each case. Validation runs before
// anything is written to disk, so a bad ruleset or a corrupted feed can
// never replace a good event log with a broken one.
package validate
