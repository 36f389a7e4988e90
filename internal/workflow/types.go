package workflow

import (
	"time"

	"slidevox/internal/language"
	"slidevox/internal/matching"
	"slidevox/internal/replacement"
	"slidevox/internal/slots"
)

// Options are per-invocation overrides of the configured batch behavior.
type Options struct {
	// Locale replaces file-name locale resolution for every deck.
	Locale string
	// DryRun matches and decides without writing output.
	DryRun bool
	// Workers overrides batch.workers when positive.
	Workers int
}

// Plan is the read-only analysis of one deck: its locale, the recordings
// available for it, and the slot pairing.
type Plan struct {
	Source   string
	Locale   language.Locale
	AssetDir string
	Assets   []string
	Slots    []slots.Slot
	Matches  matching.Result
}

// DocumentStatus is the terminal state of one deck.
type DocumentStatus string

const (
	DocumentProcessed DocumentStatus = "processed"
	DocumentUnchanged DocumentStatus = "unchanged"
	DocumentSkipped   DocumentStatus = "skipped"
	DocumentFailed    DocumentStatus = "failed"
)

// DocumentResult is the outcome of one deck.
type DocumentResult struct {
	Source     string
	Output     string
	Locale     string
	Status     DocumentStatus
	Reason     string
	Err        error
	Report     replacement.Report
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunResult is the outcome of one batch.
type RunResult struct {
	RunID     string
	DryRun    bool
	Documents []DocumentResult
	// Err is set when a run-scoped failure stopped the batch.
	Err error
}

// Count returns how many documents ended in status.
func (r *RunResult) Count(status DocumentStatus) int {
	n := 0
	for _, d := range r.Documents {
		if d.Status == status {
			n++
		}
	}
	return n
}
