package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/layout"
)

func TestNumbers_RowOrder(t *testing.T) {
	g := blockgraph.MustNew([]blockgraph.Block{
		{ID: "c", Kind: blockgraph.KindDecision, Title: "oxygen"},
		{ID: "a", Kind: blockgraph.KindObservation, Title: "low sats", ConnectsTo: []string{"b", "c"}},
		{ID: "b", Kind: blockgraph.KindInterpretation, Title: "hypoxia"},
	})
	nums := Numbers(layout.Compute(g, layout.DefaultSpacing()))

	assert.Equal(t, map[string]int{"a": 1, "c": 2, "b": 3}, nums)
}

func TestRender(t *testing.T) {
	g := blockgraph.MustNew([]blockgraph.Block{
		{ID: "a", Kind: blockgraph.KindObservation, Title: "low sats", ConnectsTo: []string{"b"}},
		{ID: "b", Kind: blockgraph.KindDecision, Title: "oxygen",
			Feedback: &blockgraph.Feedback{Correctness: blockgraph.Partial, Timing: blockgraph.TimingLate}},
	})
	out := Render(g, layout.Compute(g, layout.DefaultSpacing()), 80)

	assert.Contains(t, out, "1 Observation")
	assert.Contains(t, out, "2 Decision")
	assert.Contains(t, out, "→ 2")
	assert.Contains(t, out, "partial, late")
	assert.Less(t, strings.Index(out, "low sats"), strings.Index(out, "oxygen"))
}

func TestRender_Empty(t *testing.T) {
	out := Render(blockgraph.MustNew(nil), layout.Result{}, 80)
	assert.Contains(t, out, "No reasoning blocks yet.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
