package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(blocksAnswer), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := context.Background()

	resp, err := mock.Generate(ctx, Request{System: "classify", Schema: blocksSchema()})
	require.NoError(t, err)
	assert.JSONEq(t, blocksAnswer, string(resp.Content))
	assert.Equal(t, StopEnd, resp.StopReason)

	_, err = mock.Generate(ctx, Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = mock.Generate(ctx, Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail, "empty queue")

	assert.Equal(t, 3, mock.CallCount())
	last, ok := mock.LastCall()
	require.True(t, ok)
	assert.Empty(t, last.System)
}

func TestMockProvider_EchoesModelAndRejectsEmpty(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"ok"`), Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Content: json.RawMessage("  ")},
	)
	ctx := context.Background()

	resp, err := mock.Generate(ctx, Request{Model: "fast"})
	require.NoError(t, err)
	assert.Equal(t, "fast", resp.Model)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	_, err = mock.Generate(ctx, Request{})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"score":3}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: blocksSchema()})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "live-classify", PurposeFrom(WithPurpose(ctx, "live-classify")))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, "CLINREASON_ANTHROPIC_API_KEY"},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, ""},
		{"gemini without key", Config{Provider: "gemini"}, "CLINREASON_GEMINI_API_KEY"},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k"}}, ""},
		{"mock", Config{Provider: "mock"}, ""},
		{"unknown", Config{Provider: "llama"}, "unknown LLM provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CLINREASON_LLM_PROVIDER":    "openai",
		"CLINREASON_OPENAI_API_KEY":  "sk-test",
		"CLINREASON_OPENAI_BASE_URL": "http://localhost:8080/v1",
		"CLINREASON_LLM_TIMEOUT":     "5s",
		"CLINREASON_ANTHROPIC_MODEL": "",
		"ANTHROPIC_API_KEY":          "ignored",
	}
	cfg := DefaultConfig()
	ApplyEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:8080/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "claude-haiku", cfg.Anthropic.Model)
	assert.Empty(t, cfg.Anthropic.APIKey)
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: "openai"}, nil)
	assert.Error(t, err, "missing key")
}

func TestLoggingProvider(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(blocksAnswer), Usage: Usage{InputTokens: 1000, OutputTokens: 200}},
		MockResponse{Err: errors.New("connection reset")},
	)
	p := WithLogging(mock, zap.New(core))
	ctx := WithPurpose(context.Background(), "live-classify")

	_, err := p.Generate(ctx, Request{Schema: blocksSchema()})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "llm request", entries[0].Message)
	assert.Equal(t, "live-classify", entries[0].ContextMap()["purpose"])
	assert.Equal(t, "test-reasoning-blocks", entries[0].ContextMap()["schema"])
	assert.EqualValues(t, 1000, entries[0].ContextMap()["input_tokens"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "connection reset", entries[1].ContextMap()["error"])
}

func TestEstimateCost(t *testing.T) {
	cost, ok := EstimateCost("claude-haiku-4-5-20251001", Usage{InputTokens: 1_000_000, OutputTokens: 100_000})
	require.True(t, ok)
	assert.InDelta(t, 1.5, cost, 1e-9)

	_, ok = EstimateCost("mock", Usage{InputTokens: 10})
	assert.False(t, ok)
}

// slowProvider blocks until its context is done.
type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var base Provider = slowProvider{}
	assert.Equal(t, base, WithTimeout(base, 0))
}

func TestStatusError(t *testing.T) {
	cause := errors.New("boom")

	var rl *ErrRateLimit
	err := statusError(http.StatusTooManyRequests, http.Header{"Retry-After": {"3"}}, cause)
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 3*time.Second, rl.RetryAfter)
	assert.ErrorIs(t, err, cause)

	var rejected *ErrRejected
	require.ErrorAs(t, statusError(http.StatusBadRequest, nil, cause), &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.Status)

	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, statusError(http.StatusRequestTimeout, nil, cause), &unavailable)
	assert.ErrorAs(t, statusError(http.StatusServiceUnavailable, nil, cause), &unavailable)
	assert.ErrorAs(t, statusError(0, nil, cause), &unavailable)
}

func TestModels_Pick(t *testing.T) {
	m := newModels("claude-haiku", anthropicModels)
	assert.Equal(t, "claude-haiku-4-5-20251001", m.ModelID())
	assert.Equal(t, m.ModelID(), m.pick(Request{}))
	assert.Equal(t, "claude-sonnet-4-5-20250929", m.pick(Request{Model: "claude-sonnet"}))
	assert.Equal(t, "custom-model", m.pick(Request{Model: "custom-model"}))
}
