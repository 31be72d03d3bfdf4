// Package layout turns a block graph into rows and 2-D coordinates.
//
// Rows are longest-path levels from the graph's roots; within a row
// blocks keep their insertion order and are centered on Spacing.CenterX.
package layout

import (
	"maps"
	"slices"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Spacing holds the distance between rows and between blocks in a row.
type Spacing struct {
	Horizontal float64 `json:"horizontal" yaml:"horizontal"`
	Vertical   float64 `json:"vertical" yaml:"vertical"`
	CenterX    float64 `json:"centerX" yaml:"center_x"`
}

// DefaultSpacing returns the spacing used by the card renderer.
func DefaultSpacing() Spacing {
	return Spacing{
		Horizontal: 300,
		Vertical:   200,
	}
}

// Position is the placement of a single block.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
}

// Result is the computed layout of a graph.
type Result struct {
	Positions map[string]Position `json:"positions"`
	Rows      [][]string          `json:"rows"`

	// Capped is set when a block hit the relaxation cap, which only
	// happens when the graph has a cycle. Skipped lists the edges
	// whose level proposals were ignored.
	Capped  bool              `json:"capped"`
	Skipped []blockgraph.Edge `json:"skipped,omitempty"`
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	out := Result{
		Positions: maps.Clone(r.Positions),
		Capped:    r.Capped,
		Skipped:   slices.Clone(r.Skipped),
	}
	if r.Rows != nil {
		out.Rows = make([][]string, len(r.Rows))
		for i, row := range r.Rows {
			out.Rows[i] = slices.Clone(row)
		}
	}
	return out
}

// Compute lays out g. It never fails: an empty graph yields an empty
// result and cyclic input degrades to a best-effort layout.
func Compute(g *blockgraph.Graph, sp Spacing) Result {
	res := Result{Positions: make(map[string]Position, g.Len())}
	if g.Len() == 0 {
		return res
	}

	levels := assignLevels(g, &res)

	maxLevel := 0
	for _, lvl := range levels {
		maxLevel = max(maxLevel, lvl)
	}
	res.Rows = make([][]string, maxLevel+1)
	for _, b := range g.Blocks() {
		lvl := levels[b.ID]
		res.Rows[lvl] = append(res.Rows[lvl], b.ID)
	}

	for lvl, row := range res.Rows {
		width := float64(len(row)-1) * sp.Horizontal
		startX := sp.CenterX - width/2
		for i, id := range row {
			res.Positions[id] = Position{
				X:     startX + float64(i)*sp.Horizontal,
				Y:     float64(lvl) * sp.Vertical,
				Level: lvl,
			}
		}
	}

	return res
}

// Levels returns only the level assignment of g.
func Levels(g *blockgraph.Graph) map[string]int {
	var res Result
	return assignLevels(g, &res)
}

// assignLevels computes longest-path levels with a worklist. A block's
// level only ever increases; each increase re-enqueues the block. The
// number of increases per block is capped at the block count, which a
// DAG can never reach, so the loop terminates on cyclic input too.
func assignLevels(g *blockgraph.Graph, res *Result) map[string]int {
	blocks := g.Blocks()
	limit := len(blocks)

	levels := make(map[string]int, len(blocks))
	raises := make(map[string]int, len(blocks))

	roots := g.Roots()
	if len(roots) == 0 {
		roots = make([]string, len(blocks))
		for i, b := range blocks {
			roots[i] = b.ID
		}
	}

	propagate := func(seeds []string) {
		queue := make([]string, 0, len(seeds))
		for _, id := range seeds {
			levels[id] = 0
			queue = append(queue, id)
		}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			next := levels[id] + 1
			for _, child := range g.Children(id) {
				cur, seen := levels[child]
				if seen && cur >= next {
					continue
				}
				if raises[child] >= limit {
					res.Capped = true
					res.Skipped = append(res.Skipped, blockgraph.Edge{From: id, To: child})
					continue
				}
				raises[child]++
				levels[child] = next
				queue = append(queue, child)
			}
		}
	}

	propagate(roots)

	// Blocks only reachable through a cycle get seeded one at a time
	// so that every block ends up with a level.
	for _, b := range blocks {
		if _, ok := levels[b.ID]; !ok {
			propagate([]string{b.ID})
		}
	}

	if res.Capped {
		compact(levels)
	}
	return levels
}

// compact renumbers levels densely, keeping their order. A capped cycle
// pushes its blocks far down and leaves empty levels above them; a DAG
// never has gaps.
func compact(levels map[string]int) {
	used := make([]int, 0, len(levels))
	for _, lvl := range levels {
		used = append(used, lvl)
	}
	slices.Sort(used)
	used = slices.Compact(used)

	rank := make(map[int]int, len(used))
	for i, lvl := range used {
		rank[lvl] = i
	}
	for id, lvl := range levels {
		levels[id] = rank[lvl]
	}
}
