package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetry(t *testing.T) {
	ok := MockResponse{Content: json.RawMessage(`{"blocks":[]}`)}
	unavailable := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("missing blocks")}}
	truncated := MockResponse{Err: &ErrMaxTokensExceeded{}}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{ok}, false, 1},
		{"transient then success", []MockResponse{unavailable, unavailable, ok}, false, 3},
		{"gives up after max attempts", []MockResponse{unavailable, unavailable, unavailable, ok}, true, 3},
		{"rate limit is retried", []MockResponse{{Err: &ErrRateLimit{}}, ok}, false, 2},
		{"invalid retried once", []MockResponse{invalid, ok}, false, 2},
		{"invalid twice stops", []MockResponse{invalid, invalid, ok}, true, 2},
		{"truncation not retried", []MockResponse{truncated, ok}, true, 1},
		{"rejected not retried", []MockResponse{{Err: &ErrRejected{Status: 401}}, ok}, true, 1},
		{"plain errors are transient", []MockResponse{{Err: errors.New("EOF")}, ok}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_CanceledContextStops(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: context.Canceled}, MockResponse{})
	_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ContextDoneDuringBackoff(t *testing.T) {
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}})
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRetry_WaitHonorsRetryAfter(t *testing.T) {
	r := &RetryProvider{config: fastRetry()}
	if got := r.wait(1, &ErrRateLimit{RetryAfter: 3 * time.Second}); got != 3*time.Second {
		t.Errorf("wait = %v, want 3s", got)
	}
	for attempt := 1; attempt <= 5; attempt++ {
		if got := r.wait(attempt, errors.New("x")); got > 6*time.Millisecond {
			t.Errorf("attempt %d: wait %v exceeds max wait plus jitter", attempt, got)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want verdict
	}{
		{context.Canceled, giveUp},
		{&ErrMaxTokensExceeded{}, giveUp},
		{&ErrRejected{Status: 403}, giveUp},
		{&ErrInvalidResponse{}, retryInvalid},
		{&ErrRateLimit{}, retryTransient},
		{errors.New("connection reset"), retryTransient},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("classify(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
