// Package compare matches a learner's reasoning graph against a
// reference graph and scores the overlap.
package compare

import (
	"math"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// DefaultThreshold is the minimum similarity for two blocks to match.
const DefaultThreshold = 0.5

// Match pairs a learner block with the reference block it claimed.
type Match struct {
	Learner   blockgraph.Block `json:"learner"`
	Reference blockgraph.Block `json:"reference"`
	Score     float64          `json:"score"`
}

// Result partitions both graphs into matched, missed and incorrect blocks.
type Result struct {
	Matched   []Match            `json:"matched"`
	Missed    []blockgraph.Block `json:"missed"`
	Incorrect []blockgraph.Block `json:"incorrect"`

	// Alignment is the matched share of the larger graph, 0-100.
	Alignment int `json:"alignment"`
	// MatchRate is the matched share of the reference graph, 0-1.
	MatchRate float64   `json:"matchRate"`
	Insights  []Insight `json:"insights,omitempty"`
}

type options struct {
	threshold float64
	rules     []Rule
}

// Option configures Compare.
type Option func(*options)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithRules replaces the default insight rules.
func WithRules(rules ...Rule) Option {
	return func(o *options) { o.rules = rules }
}

// Compare greedily matches learner blocks to reference blocks. Learner
// blocks are visited in order and each claims the best unclaimed
// reference block scoring at least the threshold; on ties the earlier
// reference block wins. Matching is therefore order-sensitive.
func Compare(learner, reference []blockgraph.Block, opts ...Option) Result {
	o := options{threshold: DefaultThreshold, rules: DefaultRules()}
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{
		Matched:   []Match{},
		Missed:    []blockgraph.Block{},
		Incorrect: []blockgraph.Block{},
	}
	claimed := make([]bool, len(reference))

	for _, l := range learner {
		best, bestScore := -1, 0.0
		for i, r := range reference {
			if claimed[i] {
				continue
			}
			s := Similarity(l, r)
			if s >= o.threshold && s > bestScore {
				best, bestScore = i, s
			}
		}
		if best < 0 {
			res.Incorrect = append(res.Incorrect, l.Clone())
			continue
		}
		claimed[best] = true
		res.Matched = append(res.Matched, Match{
			Learner:   l.Clone(),
			Reference: reference[best].Clone(),
			Score:     bestScore,
		})
	}

	for i, r := range reference {
		if !claimed[i] {
			res.Missed = append(res.Missed, r.Clone())
		}
	}

	if n := max(len(learner), len(reference)); n > 0 {
		res.Alignment = int(math.Round(100 * float64(len(res.Matched)) / float64(n)))
	}
	if len(reference) > 0 {
		res.MatchRate = float64(len(res.Matched)) / float64(len(reference))
	}

	res.Insights = evaluate(o.rules, newInsightEnv(learner, res))
	return res
}
