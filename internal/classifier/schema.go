package classifier

import (
	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/llm"
)

func kindEnum() []any {
	kinds := blockgraph.AllKinds()
	out := make([]any, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func blockSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Stable identifier. Reuse the id of an unchanged block from the current diagram.",
			},
			"kind": map[string]any{
				"type": "string",
				"enum": kindEnum(),
			},
			"title": map[string]any{
				"type":        "string",
				"description": "A short label, at most eight words",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "One or two sentences in the learner's own terms",
			},
			"connectsTo": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Ids of the blocks this step leads to",
			},
		},
		"required":             []any{"id", "kind", "title", "body", "connectsTo"},
		"additionalProperties": false,
	}
}

// BlocksSchema is the live classification answer.
var BlocksSchema = &llm.Schema{
	Name:        "reasoning-blocks",
	Description: "The learner's clinical reasoning as a directed graph of typed blocks",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"blocks": map[string]any{
				"type":  "array",
				"items": blockSchema(),
			},
		},
		"required":             []any{"blocks"},
		"additionalProperties": false,
	},
}

// AnalysisSchema is the final submission answer.
var AnalysisSchema = &llm.Schema{
	Name:        "final-analysis",
	Description: "Final graph of the learner's reasoning with overall feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"studentBlocks": map[string]any{
				"type":  "array",
				"items": blockSchema(),
			},
			"expertBlocks": map[string]any{
				"type":        "array",
				"items":       blockSchema(),
				"description": "Steps an expert would add; may be empty",
			},
			"overallFeedback": map[string]any{
				"type":        "string",
				"description": "Two or three sentences addressed to the learner",
			},
			"score": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 100,
			},
		},
		"required":             []any{"studentBlocks", "expertBlocks", "overallFeedback", "score"},
		"additionalProperties": false,
	},
}
