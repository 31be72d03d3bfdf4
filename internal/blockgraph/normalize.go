package blockgraph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Repair records one change Normalize made to its input.
type Repair struct {
	BlockID string
	Detail  string
}

// NewID returns a fresh block id.
func NewID() string {
	return "blk-" + uuid.NewString()[:8]
}

// Normalize repairs classifier output so that New accepts it. Blocks
// are never dropped: missing ids are generated with newID (NewID when
// nil), duplicate ids get a numeric suffix, kinds are parsed leniently
// and connectsTo lists are trimmed and de-duplicated. References to a
// duplicated id keep resolving to its first occurrence.
func Normalize(blocks []Block, newID func() string) ([]Block, []Repair) {
	if newID == nil {
		newID = NewID
	}

	out := CloneBlocks(blocks)
	var repairs []Repair

	taken := make(map[string]bool, len(out))
	for _, b := range out {
		if id := strings.TrimSpace(b.ID); id != "" {
			taken[id] = true
		}
	}

	used := make(map[string]bool, len(out))
	for i := range out {
		b := &out[i]
		b.ID = strings.TrimSpace(b.ID)
		b.Title = strings.TrimSpace(b.Title)
		b.Body = strings.TrimSpace(b.Body)

		switch {
		case b.ID == "":
			id := newID()
			for taken[id] {
				id = newID()
			}
			repairs = append(repairs, Repair{BlockID: id, Detail: "generated missing id"})
			b.ID = id
		case used[b.ID]:
			orig := b.ID
			n := 2
			for taken[fmt.Sprintf("%s-%d", orig, n)] {
				n++
			}
			b.ID = fmt.Sprintf("%s-%d", orig, n)
			repairs = append(repairs, Repair{BlockID: b.ID, Detail: fmt.Sprintf("renamed duplicate of %q", orig)})
		}
		taken[b.ID] = true
		used[b.ID] = true

		kind, ok := ParseKind(string(b.Kind))
		if !ok {
			repairs = append(repairs, Repair{
				BlockID: b.ID,
				Detail:  fmt.Sprintf("kind %q mapped to %q", b.Kind, kind),
			})
		}
		b.Kind = kind

		if len(b.ConnectsTo) > 0 {
			seen := make(map[string]bool, len(b.ConnectsTo))
			targets := b.ConnectsTo[:0]
			for _, to := range b.ConnectsTo {
				to = strings.TrimSpace(to)
				if to == "" || seen[to] {
					continue
				}
				seen[to] = true
				targets = append(targets, to)
			}
			b.ConnectsTo = targets
		}
	}

	return out, repairs
}
