package ledger

import "time"

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunCanceled  = "canceled"
)

// Document statuses.
const (
	DocumentProcessed = "processed"
	DocumentUnchanged = "unchanged"
	DocumentSkipped   = "skipped"
	DocumentFailed    = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Documents    int
	Failed       int
	DryRun       bool
	ErrorMessage string
}

// Document is the record of one deck within a run.
type Document struct {
	ID           int64
	RunID        string
	SourcePath   string
	OutputPath   string
	Locale       string
	Status       string
	Reason       string
	ErrorMessage string
	Written      int
	Skipped      int
	Unmatched    int
	StartedAt    time.Time
	FinishedAt   time.Time
	Slots        []SlotRecord
}

// SlotRecord is the persisted outcome of one narration slot.
type SlotRecord struct {
	SlotID       uint32
	ShowIndex    int
	State        string
	Mode         string
	Reason       string
	AssetPath    string
	PartName     string
	BytesWritten int
}
