// Package classifier turns free-text clinical reasoning into reasoning
// blocks by prompting a language model.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/llm"
	"github.com/abhisek/clinreason/internal/session"
)

// Purposes tag requests for the logging decorator.
const (
	PurposeLive     = "live-classify"
	PurposeAnalysis = "final-analysis"
)

// Config holds model settings for both calls.
type Config struct {
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=1"`

	// LiveModel and AnalysisModel override the provider's model for the
	// frequent live call and the single final analysis. Empty means the
	// provider default.
	LiveModel     string `yaml:"live_model"`
	AnalysisModel string `yaml:"analysis_model"`

	// Structured asks the provider for schema-constrained JSON. Without
	// it the answer is free text and the JSON object is cut out of it.
	Structured bool `yaml:"structured"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.2,
		Structured:  true,
	}
}

// Classifier serves both live.Classifier and session.Analyzer.
type Classifier struct {
	provider llm.Provider
	cfg      Config
}

var (
	_ live.Classifier  = (*Classifier)(nil)
	_ session.Analyzer = (*Classifier)(nil)
)

// New creates a classifier over provider.
func New(provider llm.Provider, cfg Config) *Classifier {
	return &Classifier{provider: provider, cfg: cfg}
}

// Classify regenerates the learner graph from the latest text.
func (c *Classifier) Classify(ctx context.Context, req live.Request) ([]blockgraph.Block, error) {
	ctx = llm.WithPurpose(ctx, PurposeLive)

	msg, err := render(liveTemplate, req)
	if err != nil {
		return nil, fmt.Errorf("build classify prompt: %w", err)
	}
	raw, err := c.generate(ctx, c.cfg.LiveModel, liveSystemPrompt, msg, BlocksSchema)
	if err != nil {
		return nil, fmt.Errorf("live classification: %w", err)
	}
	return extractBlocks(ctx, raw)
}

// Analyze produces the final learner graph with overall feedback.
func (c *Classifier) Analyze(ctx context.Context, req session.AnalysisRequest) (*session.Analysis, error) {
	ctx = llm.WithPurpose(ctx, PurposeAnalysis)

	msg, err := render(analysisTemplate, req)
	if err != nil {
		return nil, fmt.Errorf("build analysis prompt: %w", err)
	}
	raw, err := c.generate(ctx, c.cfg.AnalysisModel, analysisSystemPrompt, msg, AnalysisSchema)
	if err != nil {
		return nil, fmt.Errorf("final analysis: %w", err)
	}

	var out session.Analysis
	if err := extract(ctx, analysisQuery, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Classifier) generate(ctx context.Context, model, system, user string, schema *llm.Schema) ([]byte, error) {
	req := llm.Request{
		Model:       model,
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	if c.cfg.Structured {
		req.Schema = schema
	} else {
		req.System += "\n\nAnswer with a single JSON object and nothing else."
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if c.cfg.Structured {
		return resp.Content, nil
	}
	return stripFences(resp.Content), nil
}

const kindGuide = `Block kinds:
- observation: a finding from history, examination or investigations
- interpretation: what a finding or group of findings means
- consideration: a differential, risk or factor being weighed
- contraindication: a reason not to do something
- decision: an action, treatment or plan`

const liveSystemPrompt = `You map a medical learner's free-text clinical reasoning onto a diagram of reasoning blocks while they are still writing.

` + kindGuide + `

Instructions:
- Represent only what the learner has written. Do not add steps they have not taken.
- Keep the id of every block from the current diagram that still applies.
- connectsTo points from a step to the steps it leads to. Never connect a block to itself.
- Selected treatments are decisions the learner has committed to.
- Return {"blocks": [...]}; an empty list is valid when nothing is written yet.`

const analysisSystemPrompt = `You are a clinical educator reviewing a medical learner's submitted reasoning for a case.

` + kindGuide + `

Instructions:
- studentBlocks: the learner's reasoning as blocks. Represent only what they wrote.
- When a learner step is equivalent to an expert step, use the expert step's kind and similar wording.
- expertBlocks: important expert steps the learner left out. May be empty.
- overallFeedback: two or three sentences addressed to the learner.
- score: 0 to 100 for the quality of the reasoning.`

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
	"join": strings.Join,
}

var liveTemplate = template.Must(template.New("live").Funcs(funcs).Parse(`Case:
{{.CaseContext}}

Selected treatments: {{if .Treatments}}{{join .Treatments ", "}}{{else}}none{{end}}

Current diagram:
{{if .CurrentBlocks}}{{json .CurrentBlocks}}{{else}}(empty){{end}}

Change since last update: {{.DiffSummary}}

Learner's reasoning:
{{.NewText}}
`))

var analysisTemplate = template.Must(template.New("analysis").Funcs(funcs).Parse(`Case:
{{.CaseContext}}

Selected treatments: {{if .Treatments}}{{join .Treatments ", "}}{{else}}none{{end}}
Learner's confidence: {{.Confidence}}/100

Expert reasoning:
{{json .ReferenceBlocks}}

Learner's last live diagram:
{{if .CurrentBlocks}}{{json .CurrentBlocks}}{{else}}(empty){{end}}

Learner's submitted reasoning:
{{.Text}}
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
