// Package live decides when a learner's free-text reasoning should be
// re-classified into a block graph while they are still typing.
package live

import (
	"slices"
	"time"
	"unicode/utf8"
)

// DefaultMinDelta is the text-length change, in characters, that makes
// a tick significant on its own.
const DefaultMinDelta = 100

// Snapshot captures the inputs a classifier call was made with.
type Snapshot struct {
	Text       string    `json:"text"`
	Treatments []string  `json:"treatments"`
	Confidence int       `json:"confidence"`
	TakenAt    time.Time `json:"takenAt"`
}

// Significant reports whether next differs enough from prev to warrant
// a classifier call: the text length moved by at least minDelta
// characters, or the selected treatment set changed. Treatment order
// is ignored.
func Significant(prev, next Snapshot, minDelta int) bool {
	delta := utf8.RuneCountInString(next.Text) - utf8.RuneCountInString(prev.Text)
	if delta < 0 {
		delta = -delta
	}
	if delta >= minDelta {
		return true
	}
	return !sameSet(prev.Treatments, next.Treatments)
}

func sameSet(a, b []string) bool {
	sa, sb := dedupSorted(a), dedupSorted(b)
	return slices.Equal(sa, sb)
}

func dedupSorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return slices.Compact(out)
}
