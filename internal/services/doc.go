// Package services defines shared utilities consumed by the replacement
// pipeline stages and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, document paths, and slot identifiers
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures as
//     slot-, document-, or run-scoped so callers can decide whether to skip a
//     narration, skip a deck, or stop the batch.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (skip vs abort, observability) stays uniform across the batch.
package services
