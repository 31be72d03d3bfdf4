package compare

import (
	"fmt"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/layout"
)

// CorrectScore is the similarity at which a match counts as fully correct
// rather than partial.
const CorrectScore = 0.8

// Annotate returns a copy of the learner blocks with Feedback attached
// from res. Timing compares each matched block's layout level with the
// level of its reference partner.
func Annotate(learner, reference *blockgraph.Graph, res Result) []blockgraph.Block {
	learnerLevels := layout.Levels(learner)
	referenceLevels := layout.Levels(reference)

	byLearner := make(map[string]Match, len(res.Matched))
	for _, m := range res.Matched {
		byLearner[m.Learner.ID] = m
	}

	out := blockgraph.CloneBlocks(learner.Blocks())
	for i := range out {
		b := &out[i]
		m, ok := byLearner[b.ID]
		if !ok {
			b.Feedback = &blockgraph.Feedback{
				Correctness: blockgraph.Incorrect,
				Necessity:   blockgraph.Unnecessary,
				Note:        "No matching step in the expert reasoning.",
			}
			continue
		}

		fb := &blockgraph.Feedback{
			Correctness: blockgraph.Partial,
			Necessity:   blockgraph.Necessary,
			MatchedID:   m.Reference.ID,
			Score:       m.Score,
			Note:        fmt.Sprintf("Matches expert step %q.", m.Reference.Title),
		}
		if m.Score >= CorrectScore {
			fb.Correctness = blockgraph.Correct
		}
		lvl, lok := learnerLevels[b.ID]
		ref, rok := referenceLevels[m.Reference.ID]
		if lok && rok {
			switch {
			case lvl < ref:
				fb.Timing = blockgraph.TimingEarly
			case lvl > ref:
				fb.Timing = blockgraph.TimingLate
			default:
				fb.Timing = blockgraph.TimingOnTime
			}
		}
		b.Feedback = fb
	}
	return out
}
