package live

import (
	"context"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Request is everything the classifier needs to regenerate a graph.
type Request struct {
	PreviousText  string             `json:"previousText"`
	NewText       string             `json:"newText"`
	DiffSummary   string             `json:"textDiffSummary"`
	CurrentBlocks []blockgraph.Block `json:"currentBlocks"`
	CaseContext   string             `json:"caseContext"`
	Treatments    []string           `json:"selectedTreatments"`
}

// Classifier turns free-text reasoning into the complete set of
// reasoning blocks. Its answer replaces the learner graph wholesale.
type Classifier interface {
	Classify(ctx context.Context, req Request) ([]blockgraph.Block, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, req Request) ([]blockgraph.Block, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, req Request) ([]blockgraph.Block, error) {
	return f(ctx, req)
}
