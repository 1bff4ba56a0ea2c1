package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"data access", fmt.Errorf("query transactions: %w", ErrDataAccess), CodeDataAccess},
		{"malformed row", fmt.Errorf("row 3: %w", ErrMalformedRow), CodeMalformedRow},
		{"app error", RateLimit("slow down"), CodeRateLimit},
		{"wrapped app error", fmt.Errorf("outer: %w", NotFound("missing")), CodeNotFound},
		{"unknown", stderrors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusCodes(t *testing.T) {
	if got := New(CodeDataAccess, "db down").StatusCode; got != http.StatusServiceUnavailable {
		t.Errorf("data access status = %d, want %d", got, http.StatusServiceUnavailable)
	}
	if got := New(CodeMalformedRow, "bad row").StatusCode; got != http.StatusInternalServerError {
		t.Errorf("malformed row status = %d, want %d", got, http.StatusInternalServerError)
	}
}
