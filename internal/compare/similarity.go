package compare

import (
	"strings"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

const (
	titleWeight = 0.6
	bodyWeight  = 0.4
)

// Similarity scores how closely two blocks express the same step.
// Blocks of different kinds never match; otherwise the score is a
// weighted Jaccard overlap of title and body words.
func Similarity(a, b blockgraph.Block) float64 {
	if a.Kind != b.Kind {
		return 0
	}
	return titleWeight*Jaccard(a.Title, b.Title) + bodyWeight*Jaccard(a.Body, b.Body)
}

// Jaccard returns |A∩B| / |A∪B| over the lower-cased word sets of a and
// b. Two empty texts score 0.
func Jaccard(a, b string) float64 {
	sa, sb := tokens(a), tokens(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func tokens(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
