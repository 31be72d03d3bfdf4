package session

import (
	"context"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// AnalysisRequest is what the final analysis sees of a submission.
type AnalysisRequest struct {
	CaseID          string
	CaseContext     string
	Text            string
	Treatments      []string
	Confidence      int
	CurrentBlocks   []blockgraph.Block
	ReferenceBlocks []blockgraph.Block
}

// Analysis is the final classifier verdict on a submission.
type Analysis struct {
	StudentBlocks   []blockgraph.Block `json:"studentBlocks"`
	ExpertBlocks    []blockgraph.Block `json:"expertBlocks,omitempty"`
	OverallFeedback string             `json:"overallFeedback,omitempty"`
	// Score is the analyzer's own 0-100 rating; zero when it gave none.
	Score int `json:"score,omitempty"`
}

// Analyzer produces the final, authoritative learner graph.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, req AnalysisRequest) (*Analysis, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	return f(ctx, req)
}
