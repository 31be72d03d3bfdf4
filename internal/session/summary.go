package session

import (
	"time"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/compare"
)

// Summary is what the results screen shows.
type Summary struct {
	CaseTitle   string
	Duration    time.Duration
	Alignment   int
	Score       int
	Confidence  int
	Matched     int
	Missed      int
	Incorrect   int
	Feedback    string
	Insights    []compare.Insight
	MissedKinds map[blockgraph.Kind]int
}

// BuildSummary condenses the session's result. It returns nil before the
// first successful submission.
func BuildSummary(s *Session) *Summary {
	res := s.Result()
	if res == nil {
		return nil
	}
	cmp := res.Comparison
	sum := &Summary{
		CaseTitle:   s.Case.Title,
		Duration:    res.SubmittedAt.Sub(s.StartedAt),
		Alignment:   cmp.Alignment,
		Confidence:  s.Confidence(),
		Matched:     len(cmp.Matched),
		Missed:      len(cmp.Missed),
		Incorrect:   len(cmp.Incorrect),
		Insights:    cmp.Insights,
		MissedKinds: make(map[blockgraph.Kind]int),
	}
	if res.Analysis != nil {
		sum.Score = res.Analysis.Score
		sum.Feedback = res.Analysis.OverallFeedback
	}
	for _, b := range cmp.Missed {
		sum.MissedKinds[b.Kind]++
	}
	return sum
}

// Calibration compares confidence with alignment: positive means the
// learner was more confident than their reasoning warranted.
func (s *Summary) Calibration() int {
	return s.Confidence - s.Alignment
}
