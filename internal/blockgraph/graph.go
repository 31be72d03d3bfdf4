package blockgraph

import (
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
)

var (
	ErrEmptyID     = errors.New("block has empty id")
	ErrDuplicateID = errors.New("duplicate block id")
)

// Edge is a resolved connection between two blocks.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IssueKind names a recoverable data-quality defect.
type IssueKind string

const (
	IssueUnknownKind  IssueKind = "unknown-kind"
	IssueDanglingEdge IssueKind = "dangling-edge"
	IssueSelfLoop     IssueKind = "self-loop"
)

// Issue describes a defect that was recovered while building a Graph.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	BlockID string    `json:"blockId"`
	Detail  string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s on %q: %s", i.Kind, i.BlockID, i.Detail)
}

// Graph is an ordered set of blocks with adjacency indices built once.
// A Graph is immutable after New returns.
type Graph struct {
	blocks   []Block
	index    map[string]int
	children map[string][]string
	parents  map[string][]string
	edges    []Edge
	issues   []Issue
}

// New builds a Graph from blocks in their given order.
//
// Empty or duplicate ids are rejected. Unknown kinds are mapped to
// FallbackKind and dangling connectsTo targets are excluded from the
// adjacency; both are reported through Issues.
func New(blocks []Block) (*Graph, error) {
	g := &Graph{
		blocks:   CloneBlocks(blocks),
		index:    make(map[string]int, len(blocks)),
		children: make(map[string][]string, len(blocks)),
		parents:  make(map[string][]string, len(blocks)),
	}

	for i := range g.blocks {
		b := &g.blocks[i]
		if b.ID == "" {
			return nil, fmt.Errorf("block at position %d: %w", i, ErrEmptyID)
		}
		if _, dup := g.index[b.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, b.ID)
		}
		g.index[b.ID] = i

		kind, ok := ParseKind(string(b.Kind))
		if !ok {
			g.issues = append(g.issues, Issue{
				Kind:    IssueUnknownKind,
				BlockID: b.ID,
				Detail:  fmt.Sprintf("kind %q mapped to %q", b.Kind, FallbackKind),
			})
		}
		b.Kind = kind
	}

	for i := range g.blocks {
		b := &g.blocks[i]
		seen := make(map[string]bool, len(b.ConnectsTo))
		for _, to := range b.ConnectsTo {
			if seen[to] {
				continue
			}
			seen[to] = true
			if _, ok := g.index[to]; !ok {
				g.issues = append(g.issues, Issue{
					Kind:    IssueDanglingEdge,
					BlockID: b.ID,
					Detail:  fmt.Sprintf("connectsTo %q does not exist", to),
				})
				continue
			}
			if to == b.ID {
				g.issues = append(g.issues, Issue{
					Kind:    IssueSelfLoop,
					BlockID: b.ID,
					Detail:  "block connects to itself",
				})
			}
			g.children[b.ID] = append(g.children[b.ID], to)
			g.parents[to] = append(g.parents[to], b.ID)
			g.edges = append(g.edges, Edge{From: b.ID, To: to})
		}
	}

	return g, nil
}

// MustNew is New for fixtures known to be well formed.
func MustNew(blocks []Block) *Graph {
	g, err := New(blocks)
	if err != nil {
		panic(err)
	}
	return g
}

// Len returns the number of blocks.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.blocks)
}

// Blocks returns a copy of the blocks in insertion order.
func (g *Graph) Blocks() []Block {
	if g == nil {
		return nil
	}
	return CloneBlocks(g.blocks)
}

// Block returns the block with the given id.
func (g *Graph) Block(id string) (Block, bool) {
	if g == nil {
		return Block{}, false
	}
	i, ok := g.index[id]
	if !ok {
		return Block{}, false
	}
	return g.blocks[i].Clone(), true
}

// Has reports whether a block with the given id exists.
func (g *Graph) Has(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[id]
	return ok
}

// Position returns the insertion index of id, or -1.
func (g *Graph) Position(id string) int {
	if g == nil {
		return -1
	}
	if i, ok := g.index[id]; ok {
		return i
	}
	return -1
}

// Children returns the resolvable successors of id in connectsTo order.
func (g *Graph) Children(id string) []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g.children[id])
}

// Parents returns the blocks that connect to id, in insertion order.
func (g *Graph) Parents(id string) []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g.parents[id])
}

// Edges returns every resolvable edge.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return slices.Clone(g.edges)
}

// Issues returns the defects recovered while building the graph.
func (g *Graph) Issues() []Issue {
	if g == nil {
		return nil
	}
	return slices.Clone(g.issues)
}

// Roots returns the ids of blocks with no incoming edges.
func (g *Graph) Roots() []string {
	if g == nil {
		return nil
	}
	var roots []string
	for _, b := range g.blocks {
		if len(g.parents[b.ID]) == 0 {
			roots = append(roots, b.ID)
		}
	}
	return roots
}

// Leaves returns the ids of blocks with no resolvable outgoing edges.
func (g *Graph) Leaves() []string {
	if g == nil {
		return nil
	}
	var leaves []string
	for _, b := range g.blocks {
		if len(g.children[b.ID]) == 0 {
			leaves = append(leaves, b.ID)
		}
	}
	return leaves
}

// CountByKind tallies blocks per kind.
func (g *Graph) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(AllKinds()))
	if g == nil {
		return counts
	}
	for _, b := range g.blocks {
		counts[b.Kind]++
	}
	return counts
}

// Fingerprint returns a stable hash of the graph's content, suitable
// as a cache key. Feedback and timestamps are excluded.
func (g *Graph) Fingerprint() string {
	h := fnv.New64a()
	if g == nil {
		return fmt.Sprintf("%016x", h.Sum64())
	}
	for _, b := range g.blocks {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\x01",
			b.ID, b.Kind, b.Title, b.Body, strings.Join(b.ConnectsTo, "\x00"))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
