// Package dashboard formats view-state values for display. Unknown values
// always render as NA, never as zero.
package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"stockdash/internal/domain"
)

// NA is shown for any value the backend did not provide.
const NA = "N/A"

// FormatPrice formats a price as $X.XX with thousands separators.
func FormatPrice(p *float64) string {
	if p == nil {
		return NA
	}
	if *p < 0 {
		return "-$" + money(-*p)
	}
	return "$" + money(*p)
}

// FormatConfidence formats a [0,1] confidence as a percentage.
func FormatConfidence(c *float64) string {
	if c == nil {
		return NA
	}
	return fmt.Sprintf("%.1f%%", *c*100)
}

// FormatSentiment formats a sentiment score to three decimals.
func FormatSentiment(s *float64) string {
	if s == nil {
		return NA
	}
	return fmt.Sprintf("%+.3f", *s)
}

// FormatChange formats an absolute and percentage change as
// "+$1.23 (+0.77%)". Either half may be unknown.
func FormatChange(abs, pct *float64) string {
	a := NA
	if abs != nil {
		sign := "+"
		if *abs < 0 {
			sign = "-"
		}
		a = sign + "$" + money(math.Abs(*abs))
	}
	p := NA
	if pct != nil {
		p = fmt.Sprintf("%+.2f%%", *pct)
	}
	if abs == nil && pct == nil {
		return NA
	}
	return fmt.Sprintf("%s (%s)", a, p)
}

// FormatAge describes when t happened relative to now ("3 minutes ago").
func FormatAge(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return NA
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}

// TrendLabel returns an arrow and upper-case label for a trend.
func TrendLabel(t domain.Trend) string {
	switch t {
	case domain.TrendUp:
		return "▲ UP"
	case domain.TrendDown:
		return "▼ DOWN"
	case domain.TrendFlat:
		return "▶ FLAT"
	default:
		return "? UNKNOWN"
	}
}

// Direction returns 1, -1 or 0 for a positive, negative, or zero/unknown
// value, for choosing colors.
func Direction(v *float64) int {
	switch {
	case v == nil:
		return 0
	case *v > 0:
		return 1
	case *v < 0:
		return -1
	default:
		return 0
	}
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return strings.TrimRight(string(r[:width-1]), " ") + "…"
}

// money formats a non-negative amount with thousands separators and two
// decimals.
func money(v float64) string {
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s.%02d", humanize.Comma(cents/100), cents%100)
}
