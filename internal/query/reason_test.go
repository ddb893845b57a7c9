package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"stockdash/internal/domain"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", &domain.NetworkError{Op: "prices", Err: context.DeadlineExceeded}, "request timed out"},
		{"cancelled", fmt.Errorf("wrapped: %w", context.Canceled), "request cancelled"},
		{"status", &domain.InvalidResponseError{Op: "news", StatusCode: 502}, "server returned 502"},
		{"decode", &domain.InvalidResponseError{Op: "news", Err: errors.New("unexpected EOF")}, "invalid response"},
		{"network", &domain.NetworkError{Op: "predict", Err: errors.New("connection refused")}, "network error"},
		{"validation", &domain.ValidationError{Input: "", Reason: "empty"}, "invalid ticker"},
		{"other", errors.New("boom"), "request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason() = %q, want %q", got, tt.want)
			}
		})
	}
}
