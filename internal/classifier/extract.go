package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/llm"
)

// Models answer in either the live shape {blocks} or the analysis shape
// {studentBlocks, expertBlocks, ...}; both queries accept both.
var (
	blocksQuery = mustCompile(`
		if type != "object" then error("answer is not an object")
		elif has("blocks") then .blocks
		elif has("studentBlocks") then .studentBlocks
		else error("answer has no blocks") end`)

	analysisQuery = mustCompile(`
		if type != "object" then error("answer is not an object") else
		{
			studentBlocks: (.studentBlocks // .blocks // []),
			expertBlocks: (.expertBlocks // []),
			overallFeedback: (.overallFeedback // .feedback // ""),
			score: ((.score // 0) | if type == "number" then floor else 0 end)
		} end`)
)

func mustCompile(src string) *gojq.Code {
	query, err := gojq.Parse(src)
	if err != nil {
		panic(fmt.Sprintf("classifier: parse query: %v", err))
	}
	code, err := gojq.Compile(query,
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		panic(fmt.Sprintf("classifier: compile query: %v", err))
	}
	return code
}

// extract runs code over the decoded answer and re-decodes its single
// output into out.
func extract(ctx context.Context, code *gojq.Code, raw []byte, out any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &llm.ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode answer: %w", err)}
	}

	iter := code.RunWithContext(ctx, doc)
	v, ok := iter.Next()
	if !ok {
		return &llm.ErrInvalidResponse{Content: raw, Err: fmt.Errorf("query produced no output")}
	}
	if err, isErr := v.(error); isErr {
		return &llm.ErrInvalidResponse{Content: raw, Err: err}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("re-encode answer: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &llm.ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode blocks: %w", err)}
	}
	return nil
}

func extractBlocks(ctx context.Context, raw []byte) ([]blockgraph.Block, error) {
	var blocks []blockgraph.Block
	if err := extract(ctx, blocksQuery, raw, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// stripFences pulls the JSON object out of a free-text answer: markdown
// code fences and any prose around the outermost braces are dropped.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "```"))
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return bytes.TrimSpace([]byte(s))
	}
	return []byte(s[start : end+1])
}
