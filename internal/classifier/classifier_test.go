package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/llm"
	"github.com/abhisek/clinreason/internal/session"
)

const liveAnswer = `{"blocks":[
	{"id":"a","kind":"observation","title":"SpO2 84%","body":"low saturation on air","connectsTo":["b"]},
	{"id":"b","kind":"decision","title":"start oxygen","body":"titrate to target","connectsTo":[]}
]}`

const analysisAnswer = `{
	"studentBlocks":[{"id":"a","kind":"observation","title":"SpO2 84%","body":"","connectsTo":[]}],
	"expertBlocks":[{"id":"e1","kind":"consideration","title":"CO2 retention","body":"","connectsTo":[]}],
	"overallFeedback":"Good start.",
	"score":62
}`

func liveRequest() live.Request {
	return live.Request{
		NewText:     "Sats 84% on air, I'd start oxygen.",
		DiffSummary: "initial text (34 chars)",
		CaseContext: "Low oxygen\n\nSpO2 84% on room air.",
		Treatments:  []string{"oxygen"},
		CurrentBlocks: []blockgraph.Block{
			{ID: "old", Kind: blockgraph.KindObservation, Title: "breathless"},
		},
	}
}

func TestClassify_Structured(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(liveAnswer)})
	c := New(mock, DefaultConfig())

	blocks, err := c.Classify(context.Background(), liveRequest())
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, blockgraph.KindObservation, blocks[0].Kind)
	assert.Equal(t, []string{"b"}, blocks[0].ConnectsTo)
	assert.Equal(t, "start oxygen", blocks[1].Title)

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Same(t, BlocksSchema, req.Schema)
	require.Len(t, req.Messages, 1)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Selected treatments: oxygen")
	assert.Contains(t, msg, `"id": "old"`)
	assert.Contains(t, msg, "Sats 84% on air")
	assert.Contains(t, msg, "initial text (34 chars)")
}

func TestClassify_SchemaViolationFails(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"blocks":[{"id":"a"}]}`)})
	c := New(mock, DefaultConfig())

	_, err := c.Classify(context.Background(), liveRequest())
	var invalid *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid), "err = %v", err)
}

func TestClassify_FreeTextAcceptsEitherShape(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"fenced live shape", "```json\n" + liveAnswer + "\n```", 2},
		{"prose around object", "Here you go:\n" + liveAnswer + "\nHope that helps.", 2},
		{"analysis shape", analysisAnswer, 1},
		{"empty blocks", `{"blocks":[]}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.answer)})
			cfg := DefaultConfig()
			cfg.Structured = false
			c := New(mock, cfg)

			blocks, err := c.Classify(context.Background(), liveRequest())
			require.NoError(t, err)
			assert.Len(t, blocks, tt.want)

			req, _ := mock.LastCall()
			assert.Nil(t, req.Schema)
			assert.Contains(t, req.System, "single JSON object")
		})
	}
}

func TestClassify_FreeTextWithoutBlocks(t *testing.T) {
	tests := []string{
		`{"answer":"none"}`,
		`[1,2,3]`,
		`not json at all`,
	}
	for _, answer := range tests {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(answer)})
		c := New(mock, Config{Structured: false})

		_, err := c.Classify(context.Background(), liveRequest())
		var invalid *llm.ErrInvalidResponse
		assert.True(t, errors.As(err, &invalid), "answer %q: err = %v", answer, err)
	}
}

func TestClassify_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider()
	c := New(mock, DefaultConfig())

	_, err := c.Classify(context.Background(), liveRequest())
	var unavailable *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

func TestAnalyze_Structured(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(analysisAnswer)})
	c := New(mock, DefaultConfig())

	a, err := c.Analyze(context.Background(), session.AnalysisRequest{
		CaseID:      "hypoxia",
		CaseContext: "Low oxygen",
		Text:        "Sats 84%.",
		Confidence:  75,
		ReferenceBlocks: []blockgraph.Block{
			{ID: "r1", Kind: blockgraph.KindObservation, Title: "hypoxia noted"},
		},
	})
	require.NoError(t, err)
	require.Len(t, a.StudentBlocks, 1)
	assert.Equal(t, "SpO2 84%", a.StudentBlocks[0].Title)
	require.Len(t, a.ExpertBlocks, 1)
	assert.Equal(t, blockgraph.KindConsideration, a.ExpertBlocks[0].Kind)
	assert.Equal(t, "Good start.", a.OverallFeedback)
	assert.Equal(t, 62, a.Score)

	req, _ := mock.LastCall()
	assert.Same(t, AnalysisSchema, req.Schema)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Learner's confidence: 75/100")
	assert.Contains(t, msg, "hypoxia noted")
	assert.Contains(t, msg, "Learner's last live diagram:\n(empty)")
}

func TestModelPerPurpose(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(liveAnswer)},
		llm.MockResponse{Content: json.RawMessage(analysisAnswer)},
	)
	cfg := DefaultConfig()
	cfg.LiveModel = "fast"
	cfg.AnalysisModel = "smart"
	c := New(mock, cfg)

	_, err := c.Classify(context.Background(), liveRequest())
	require.NoError(t, err)
	req, _ := mock.LastCall()
	assert.Equal(t, "fast", req.Model)

	_, err = c.Analyze(context.Background(), session.AnalysisRequest{Text: "x"})
	require.NoError(t, err)
	req, _ = mock.LastCall()
	assert.Equal(t, "smart", req.Model)
}

func TestAnalyze_FreeTextLiveShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(liveAnswer)})
	c := New(mock, Config{Structured: false})

	a, err := c.Analyze(context.Background(), session.AnalysisRequest{Text: "x"})
	require.NoError(t, err)
	assert.Len(t, a.StudentBlocks, 2)
	assert.Empty(t, a.ExpertBlocks)
	assert.Empty(t, a.OverallFeedback)
	assert.Zero(t, a.Score)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure! {\"a\":{\"b\":2}} done", `{"a":{"b":2}}`},
		{"  nothing here  ", "nothing here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(stripFences([]byte(tt.in))), "input %q", tt.in)
	}
}

func TestSchemas_AcceptTheirOwnShape(t *testing.T) {
	require.NoError(t, llm.ValidateJSON(BlocksSchema, []byte(liveAnswer)))
	require.NoError(t, llm.ValidateJSON(AnalysisSchema, []byte(analysisAnswer)))
	assert.Error(t, llm.ValidateJSON(BlocksSchema, []byte(`{"blocks":[{"id":"a","kind":"guess","title":"","body":"","connectsTo":[]}]}`)))
}
