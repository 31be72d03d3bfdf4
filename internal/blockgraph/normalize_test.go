package blockgraph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestNormalize_RepairsClassifierOutput(t *testing.T) {
	raw := []Block{
		{ID: " a ", Kind: "Observation", Title: " low sats ", ConnectsTo: []string{"b", "b", " "}},
		{ID: "b", Kind: "plan", Title: "oxygen"},
		{ID: "", Kind: "decision", Title: "admit"},
		{ID: "b", Kind: "interpretation", Title: "hypoxaemia"},
	}

	blocks, repairs := Normalize(raw, sequentialIDs())

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"a", "b", "gen-1", "b-2"}, ids)
	assert.Equal(t, KindObservation, blocks[0].Kind)
	assert.Equal(t, FallbackKind, blocks[1].Kind)
	assert.Equal(t, "low sats", blocks[0].Title)
	assert.Equal(t, []string{"b"}, blocks[0].ConnectsTo)
	assert.Len(t, repairs, 3)

	_, err := New(blocks)
	require.NoError(t, err)
}

func TestNormalize_KeepsInputUntouched(t *testing.T) {
	raw := []Block{{ID: "a", Kind: "nonsense", Title: "x", ConnectsTo: []string{"a", "a"}}}
	_, _ = Normalize(raw, nil)

	assert.Equal(t, Kind("nonsense"), raw[0].Kind)
	assert.True(t, slices.Equal(raw[0].ConnectsTo, []string{"a", "a"}))
}

func TestNormalize_SuffixAvoidsExistingIDs(t *testing.T) {
	raw := []Block{
		{ID: "x", Kind: KindObservation, Title: "1"},
		{ID: "x-2", Kind: KindObservation, Title: "2"},
		{ID: "x", Kind: KindObservation, Title: "3"},
	}
	blocks, _ := Normalize(raw, nil)
	assert.Equal(t, "x-3", blocks[2].ID)
}
