// Package ledger persists run history in SQLite.
//
// Each batch invocation is a run identified by a UUID. Documents processed by
// the run and the outcome of every narration slot are recorded so operators
// can review what was replaced, skipped, or left unmatched after the fact
// ("slidevox history").
package ledger
