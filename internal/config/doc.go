// Package config loads, normalizes, and validates slidevox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SLIDEVOX_ASSETS_DIR. The Config type centralizes every knob the CLI and the
// replacement pipeline need, so asset/output directories, encoder binaries, and
// skip-vs-abort policies are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy names, and clear validation errors.
package config
