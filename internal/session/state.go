package session

// Mode is whether the learner is still writing or has submitted.
type Mode string

const (
	// ModeLive regenerates the learner graph while they type.
	ModeLive Mode = "live"
	// ModeSubmitted freezes the text for final analysis.
	ModeSubmitted Mode = "submitted"
)

// Status tracks the final analysis.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Confidence bounds.
const (
	MinConfidence = 0
	MaxConfidence = 100
)
