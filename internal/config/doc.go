// Package config loads, normalizes, and validates nflminer configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the NFLMINER_TEAM environment
// fallback for the scope team. The Config type centralizes every knob the
// CLI needs: source feed, scoping filter, ruleset selection, output
// location, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a canonical team code, and clear validation errors.
package config
