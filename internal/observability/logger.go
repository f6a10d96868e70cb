package observability

import (
	"context"

	"go.uber.org/zap"
)

// WithContext returns logger annotated with the trace and span ids found in ctx.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	tc := ExtractTrace(ctx)
	if tc == nil {
		return logger
	}

	return logger.With(
		zap.String("trace_id", tc.TraceID),
		zap.String("span_id", tc.SpanID),
	)
}
