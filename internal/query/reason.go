package query

import (
	"context"
	"errors"
	"fmt"

	"stockdash/internal/domain"
)

// Reason turns a fetch error into the short text shown in a panel. It never
// includes wrapped error details.
func Reason(err error) string {
	var (
		invalid *domain.InvalidResponseError
		netErr  *domain.NetworkError
		valErr  *domain.ValidationError
		timeout interface{ Timeout() bool }
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &timeout) && timeout.Timeout():
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &invalid):
		if invalid.StatusCode != 0 {
			return fmt.Sprintf("server returned %d", invalid.StatusCode)
		}
		return "invalid response"
	case errors.As(err, &netErr):
		return "network error"
	case errors.As(err, &valErr):
		return "invalid ticker"
	default:
		return "request failed"
	}
}
