package dashboard

import (
	"testing"
	"time"
	"unicode/utf8"

	"stockdash/internal/domain"
)

func series(prices ...float64) domain.PriceSeries {
	base := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	s := make(domain.PriceSeries, len(prices))
	for i, p := range prices {
		s[i] = domain.PricePoint{Time: base.Add(time.Duration(i) * 24 * time.Hour), Price: p}
	}
	return s
}

func TestSummarize(t *testing.T) {
	sum, ok := Summarize(series(150, 145, 160, 155))
	if !ok {
		t.Fatal("Summarize returned false")
	}
	if sum.Points != 4 || sum.Low != 145 || sum.High != 160 || sum.Last != 155 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Change != 5 || sum.ChangePct == nil {
		t.Fatalf("change = %v, %v", sum.Change, sum.ChangePct)
	}
	if got := *sum.ChangePct; got < 3.33 || got > 3.34 {
		t.Errorf("ChangePct = %v, want ~3.33", got)
	}

	if _, ok := Summarize(nil); ok {
		t.Error("Summarize(nil) returned true")
	}
	if sum, _ := Summarize(series(0, 5)); sum.ChangePct != nil {
		t.Error("ChangePct set with zero first price")
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline(series(1, 2, 3, 4, 5, 6, 7, 8), 8)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("Sparkline = %q", got)
	}

	flat := Sparkline(series(5, 5, 5), 10)
	if utf8.RuneCountInString(flat) != 3 {
		t.Errorf("flat sparkline = %q", flat)
	}

	long := Sparkline(series(make([]float64, 100)...), 20)
	if n := utf8.RuneCountInString(long); n != 20 {
		t.Errorf("resampled width = %d, want 20", n)
	}

	// Duplicate timestamps must not break rendering.
	dup := domain.PriceSeries{{Price: 1}, {Price: 2}, {Price: 2}}
	if Sparkline(dup, 5) == "" {
		t.Error("duplicate-timestamp series rendered empty")
	}
	if Sparkline(nil, 5) != "" || Sparkline(dup, 0) != "" {
		t.Error("empty input should render empty")
	}
}
