package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxTickerLen bounds the accepted ticker length.
const MaxTickerLen = 10

// ValidationError reports a ticker that was rejected before any query started.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ticker %q: %s", e.Input, e.Reason)
}

var upper = cases.Upper(language.Und)

// NormalizeTicker trims and upper-cases raw and checks it is a plausible
// ticker: letters and digits, plus '.' and '-' for share classes (BRK.B).
func NormalizeTicker(raw string) (string, error) {
	t := upper.String(strings.TrimSpace(raw))
	if t == "" {
		return "", &ValidationError{Input: raw, Reason: "empty"}
	}
	if len(t) > MaxTickerLen {
		return "", &ValidationError{Input: raw, Reason: fmt.Sprintf("longer than %d characters", MaxTickerLen)}
	}
	for i, r := range t {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case (r == '.' || r == '-') && i > 0:
		default:
			return "", &ValidationError{Input: raw, Reason: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return t, nil
}
