package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingProvider logs one structured line per model call.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
}

// WithLogging wraps p with request logging. Prompts are only logged at
// debug level.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("purpose", PurposeFrom(ctx)),
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", time.Since(start)),
	}
	if req.Schema != nil {
		fields = append(fields, zap.String("schema", req.Schema.Name))
	}
	if resp != nil {
		fields = append(fields,
			zap.String("served_by", resp.Model),
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
		)
		if cost, ok := EstimateCost(resp.Model, resp.Usage); ok {
			fields = append(fields, zap.Float64("cost_usd", cost))
		}
	}

	if err != nil {
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
		return resp, err
	}

	l.logger.Info("llm request", fields...)
	if ce := l.logger.Check(zap.DebugLevel, "llm exchange"); ce != nil {
		ce.Write(
			zap.String("system", req.System),
			zap.Int("messages", len(req.Messages)),
			zap.ByteString("response", resp.Content),
		)
	}
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
