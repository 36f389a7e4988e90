// Package logging assembles structured slog loggers and formatting helpers used
// across slidevox.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can automatically
// tag log lines with run IDs, document paths, and slot identifiers. Every skipped
// narration must be attributable to a deck and slot in the log, so prefer
// WithContext over hand-built attributes. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
