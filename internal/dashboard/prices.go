package dashboard

import (
	"strings"
	"time"

	"stockdash/internal/domain"
)

// PriceSummary describes a price series for the prices panel.
type PriceSummary struct {
	Points    int
	From, To  time.Time
	First     float64
	Last      float64
	Low, High float64
	Change    float64
	ChangePct *float64 // nil when the first price is zero
}

// Summarize computes the summary of a series, or false when it is empty.
func Summarize(s domain.PriceSeries) (PriceSummary, bool) {
	last, ok := s.Last()
	if !ok {
		return PriceSummary{}, false
	}
	low, high, _ := s.Range()
	first := s[0]
	sum := PriceSummary{
		Points: len(s),
		From:   first.Time,
		To:     last.Time,
		First:  first.Price,
		Last:   last.Price,
		Low:    low,
		High:   high,
		Change: last.Price - first.Price,
	}
	if first.Price != 0 {
		pct := sum.Change / first.Price * 100
		sum.ChangePct = &pct
	}
	return sum, true
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the series as a row of block characters at most width
// wide. Longer series are resampled by taking the last point in each bucket;
// duplicate timestamps are drawn like any other point.
func Sparkline(s domain.PriceSeries, width int) string {
	if len(s) == 0 || width <= 0 {
		return ""
	}
	values := resample(s, width)

	low, high := values[0], values[0]
	for _, v := range values {
		low = min(low, v)
		high = max(high, v)
	}

	var b strings.Builder
	span := high - low
	for _, v := range values {
		idx := len(sparkBlocks) / 2
		if span > 0 {
			idx = int((v - low) * float64(len(sparkBlocks)-1) / span)
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func resample(s domain.PriceSeries, width int) []float64 {
	if len(s) <= width {
		out := make([]float64, len(s))
		for i, p := range s {
			out[i] = p.Price
		}
		return out
	}
	out := make([]float64, width)
	for i := range out {
		// Last index of bucket i.
		j := (i+1)*len(s)/width - 1
		out[i] = s[j].Price
	}
	return out
}
