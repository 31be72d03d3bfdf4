package blockgraph

import (
	"slices"
	"time"
)

// Block is one step of clinical reasoning.
type Block struct {
	ID         string      `json:"id" yaml:"id"`
	Kind       Kind        `json:"kind" yaml:"kind"`
	Title      string      `json:"title" yaml:"title"`
	Body       string      `json:"body,omitempty" yaml:"body,omitempty"`
	ConnectsTo []string    `json:"connectsTo,omitempty" yaml:"connects_to,omitempty"`
	Step       int         `json:"step,omitempty" yaml:"step,omitempty"`
	CreatedAt  time.Time   `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
	SourceSpan *SourceSpan `json:"sourceSpan,omitempty" yaml:"source_span,omitempty"`
	Feedback   *Feedback   `json:"feedback,omitempty" yaml:"-"`
}

// SourceSpan points back into the reasoning text the block was derived from.
// Start and End are byte offsets; Quote is the literal substring.
type SourceSpan struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Quote string `json:"quote" yaml:"quote"`
}

// Correctness grades a learner block against the reference graph.
type Correctness string

const (
	Correct   Correctness = "correct"
	Partial   Correctness = "partial"
	Incorrect Correctness = "incorrect"
)

// Timing compares when a learner reached a block versus the reference.
type Timing string

const (
	TimingEarly  Timing = "early"
	TimingOnTime Timing = "on-time"
	TimingLate   Timing = "late"
)

// Necessity says whether the reference reasoning needed the block at all.
type Necessity string

const (
	Necessary   Necessity = "necessary"
	Unnecessary Necessity = "unnecessary"
)

// Feedback is attached to learner blocks after comparison.
type Feedback struct {
	Correctness Correctness `json:"correctness"`
	Timing      Timing      `json:"timing,omitempty"`
	Necessity   Necessity   `json:"necessity"`
	MatchedID   string      `json:"matchedId,omitempty"`
	Score       float64     `json:"score"`
	Note        string      `json:"note,omitempty"`
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	out := b
	out.ConnectsTo = slices.Clone(b.ConnectsTo)
	if b.SourceSpan != nil {
		span := *b.SourceSpan
		out.SourceSpan = &span
	}
	if b.Feedback != nil {
		fb := *b.Feedback
		out.Feedback = &fb
	}
	return out
}

// CloneBlocks deep-copies a block slice.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Clone()
	}
	return out
}
