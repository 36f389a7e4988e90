package replacement

// State is the terminal state of one slot.
type State string

const (
	StateUnmatched State = "unmatched"
	StateWritten   State = "written"
	StateSkipped   State = "skipped"
	// StatePlanned marks a slot that would be written in a dry run.
	StatePlanned State = "planned"
)

// Mode records how a written payload was produced.
type Mode string

const (
	ModeNone        Mode = ""
	ModeTranscoded  Mode = "transcoded"
	ModePassThrough Mode = "passthrough"
)

// Outcome is the result for one slot.
type Outcome struct {
	SlotID       uint32
	ShowIndex    int
	State        State
	Mode         Mode
	Reason       string
	Err          error
	AssetPath    string
	PartName     string
	ContentType  string
	BytesWritten int
	Resampled    bool
}

// Report collects the outcomes of one document in show order.
type Report struct {
	Outcomes []Outcome
}

// Count returns how many outcomes ended in state.
func (r Report) Count(state State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Changed reports whether any payload was rewritten.
func (r Report) Changed() bool {
	return r.Count(StateWritten) > 0
}
