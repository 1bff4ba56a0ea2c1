package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one unit of work, typically one report computation.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	StartTime time.Time
	Duration  time.Duration
	Attrs     []slog.Attr
	Err       error
}

type spanContextKey struct{}

// StartSpan opens a span under the span already in ctx, if any. Without a
// parent span the request ID becomes the trace ID so log lines correlate.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    uuid.NewString(),
		Operation: operation,
		StartTime: time.Now(),
	}

	switch parent := GetSpan(ctx); {
	case parent != nil:
		span.ParentID = parent.SpanID
		span.TraceID = parent.TraceID
	case GetRequestID(ctx) != "":
		span.TraceID = GetRequestID(ctx)
	default:
		span.TraceID = uuid.NewString()
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

func (s *Span) SetAttr(key string, value any) {
	s.Attrs = append(s.Attrs, slog.Any(key, value))
}

func (s *Span) SetError(err error) {
	s.Err = err
}

// Finish stamps the duration and logs the span at debug level, or at error
// level when SetError was called.
func (s *Span) Finish(logger *slog.Logger) {
	s.Duration = time.Since(s.StartTime)

	attrs := append([]slog.Attr{
		slog.String("operation", s.Operation),
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.Duration("duration", s.Duration),
	}, s.Attrs...)
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}

	level := slog.LevelDebug
	if s.Err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", s.Err.Error()))
	}

	logger.LogAttrs(context.Background(), level, "span finished", attrs...)
}

func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}
