package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

func block(id string, kind blockgraph.Kind, title, body string, to ...string) blockgraph.Block {
	return blockgraph.Block{ID: id, Kind: kind, Title: title, Body: body, ConnectsTo: to}
}

func ids(blocks []blockgraph.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func sepsisReference() []blockgraph.Block {
	return []blockgraph.Block{
		block("fever", blockgraph.KindObservation, "fever 39.2", "temperature above 38", "sirs"),
		block("sirs", blockgraph.KindInterpretation, "meets sirs criteria", "fever and tachycardia", "sepsis"),
		block("sepsis", blockgraph.KindConsideration, "suspected sepsis", "likely urinary source", "abx"),
		block("allergy", blockgraph.KindContraindication, "penicillin allergy", "avoid beta lactams", "abx"),
		block("abx", blockgraph.KindDecision, "start broad spectrum antibiotics", "within one hour"),
	}
}

func TestSimilarity(t *testing.T) {
	obs := block("a", blockgraph.KindObservation, "low oxygen", "spo2 88")
	tests := []struct {
		name string
		b    blockgraph.Block
		want float64
	}{
		{"identical", block("b", blockgraph.KindObservation, "Low Oxygen", "SpO2 88"), 1.0},
		{"different kind", block("b", blockgraph.KindDecision, "low oxygen", "spo2 88"), 0},
		{"title only", block("b", blockgraph.KindObservation, "low oxygen", ""), 0.6},
		{"half title", block("b", blockgraph.KindObservation, "oxygen", "spo2 88"), 0.6*0.5 + 0.4},
		{"disjoint", block("b", blockgraph.KindObservation, "fever", "39.2"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(obs, tt.b), 1e-9)
		})
	}
}

func TestJaccard_EmptySetsScoreZero(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("", "  "))
	assert.Equal(t, 0.0, Jaccard("fever", ""))
}

func TestCompare_GraphAgainstItself(t *testing.T) {
	ref := sepsisReference()
	res := Compare(ref, ref)

	assert.Equal(t, 100, res.Alignment)
	assert.Empty(t, res.Missed)
	assert.Empty(t, res.Incorrect)
	assert.Len(t, res.Matched, len(ref))
	assert.InDelta(t, 1.0, res.MatchRate, 1e-9)
}

func TestCompare_NeverMatchesAcrossKinds(t *testing.T) {
	learner := []blockgraph.Block{block("l", blockgraph.KindInterpretation, "fever 39.2", "temperature above 38")}
	reference := []blockgraph.Block{block("r", blockgraph.KindObservation, "fever 39.2", "temperature above 38")}

	res := Compare(learner, reference)
	assert.Empty(t, res.Matched)
	assert.Equal(t, []string{"l"}, ids(res.Incorrect))
	assert.Equal(t, []string{"r"}, ids(res.Missed))
}

func TestCompare_EarlierLearnerBlockWinsContest(t *testing.T) {
	ref := []blockgraph.Block{block("r", blockgraph.KindDecision, "give oxygen now", "titrate to spo2")}
	partial := block("l1", blockgraph.KindDecision, "give oxygen", "titrate to spo2")
	exact := block("l2", blockgraph.KindDecision, "give oxygen now", "titrate to spo2")

	res := Compare([]blockgraph.Block{partial, exact}, ref)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "l1", res.Matched[0].Learner.ID)
	assert.Equal(t, []string{"l2"}, ids(res.Incorrect))

	res = Compare([]blockgraph.Block{exact, partial}, ref)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "l2", res.Matched[0].Learner.ID)
	assert.Equal(t, []string{"l1"}, ids(res.Incorrect))
}

func TestCompare_PicksBestUnclaimedReference(t *testing.T) {
	ref := []blockgraph.Block{
		block("r1", blockgraph.KindDecision, "give oxygen", "titrate to spo2"),
		block("r2", blockgraph.KindDecision, "give oxygen now", "titrate to spo2"),
	}
	learner := []blockgraph.Block{block("l", blockgraph.KindDecision, "give oxygen now", "titrate to spo2")}

	res := Compare(learner, ref)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "r2", res.Matched[0].Reference.ID)
	assert.Equal(t, []string{"r1"}, ids(res.Missed))
}

func TestCompare_HypoxiaBelowThreshold(t *testing.T) {
	learner := []blockgraph.Block{
		block("a", blockgraph.KindObservation, "low oxygen", "", "b"),
		block("b", blockgraph.KindDecision, "give oxygen", ""),
	}
	reference := []blockgraph.Block{
		block("a", blockgraph.KindObservation, "hypoxia noted", "", "b"),
		block("b", blockgraph.KindDecision, "administer supplemental oxygen", ""),
	}

	res := Compare(learner, reference, WithThreshold(0.5))
	assert.Equal(t, 0, res.Alignment)
	assert.Empty(t, res.Matched)
	assert.Equal(t, []string{"a", "b"}, ids(res.Incorrect))
	assert.Equal(t, []string{"a", "b"}, ids(res.Missed))
}

func TestCompare_EmptyGraphs(t *testing.T) {
	res := Compare(nil, nil)
	assert.Equal(t, 0, res.Alignment)
	assert.Equal(t, 0.0, res.MatchRate)
	assert.NotNil(t, res.Matched)
}

func TestCompare_AlignmentUsesLargerGraph(t *testing.T) {
	ref := sepsisReference()
	res := Compare(ref[:2], ref)
	// 2 matched of max(2, 5)
	assert.Equal(t, 40, res.Alignment)
	assert.InDelta(t, 0.4, res.MatchRate, 1e-9)
}

func TestCompare_DoesNotAliasInput(t *testing.T) {
	ref := sepsisReference()
	res := Compare(ref, ref)
	res.Matched[0].Learner.ConnectsTo[0] = "mutated"
	assert.Equal(t, "sirs", ref[0].ConnectsTo[0])
}
