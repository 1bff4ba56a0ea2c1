package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"sales-analytics/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartSpan_TraceFromRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	ctx, parent := StartSpan(ctx, "report")
	if parent.TraceID != "req-1" {
		t.Errorf("TraceID = %q, want req-1", parent.TraceID)
	}

	_, child := StartSpan(ctx, "store.transactions")
	if child.TraceID != "req-1" || child.ParentID != parent.SpanID {
		t.Errorf("child span = %+v, want parent %s", child, parent.SpanID)
	}
}

func TestStartSpan_NewTrace(t *testing.T) {
	_, a := StartSpan(context.Background(), "a")
	_, b := StartSpan(context.Background(), "b")
	if a.TraceID == "" || a.TraceID == b.TraceID {
		t.Errorf("independent spans should get distinct trace ids: %q %q", a.TraceID, b.TraceID)
	}
}

func TestSpanFinish_LogsErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "info", Format: "json"})

	_, quiet := StartSpan(context.Background(), "quiet")
	quiet.Finish(logger)
	if buf.Len() != 0 {
		t.Fatalf("successful span should log at debug only, got %s", buf.String())
	}

	_, failed := StartSpan(context.Background(), "report.billing")
	failed.SetAttr("rows", 3)
	failed.SetError(errors.New("boom"))
	failed.Finish(logger)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "ERROR" || entry["operation"] != "report.billing" || entry["error"] != "boom" {
		t.Errorf("unexpected log entry %v", entry)
	}
	if entry["rows"] != float64(3) {
		t.Errorf("rows attr = %v, want 3", entry["rows"])
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "info", Format: "text"})

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx, logger).Info("hello")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("log line missing request id: %s", buf.String())
	}
}
