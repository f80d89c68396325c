// Package config loads, normalizes, and validates Steeple configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PUBLISHING_APP_ID and VIDEO_API_KEY. The Config type centralizes every knob
// the CLI needs: platform credentials, the weekly service cadence, matcher
// tuning, and backfill pacing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
