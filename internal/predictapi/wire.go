package predictapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"stockdash/internal/domain"
)

// flexTime accepts the timestamp shapes the backend has used: Unix seconds
// or milliseconds as a number, RFC 3339, Python isoformat without a zone,
// and plain dates.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("timestamp %s: %w", b, err)
		}
		t.Time = unixAuto(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = unixAuto(n)
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// unixAuto reads n as milliseconds when it is too large to be seconds.
func unixAuto(n float64) time.Time {
	if math.Abs(n) >= 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// --- Prices ---

type pricesResponse struct {
	Ticker string       `json:"ticker"`
	Prices []pricePoint `json:"prices"`
}

type pricePoint struct {
	Timestamp flexTime `json:"timestamp"`
	Price     *float64 `json:"price"`
}

// toSeries drops points without a price and sorts by time.
func (r *pricesResponse) toSeries() domain.PriceSeries {
	series := make(domain.PriceSeries, 0, len(r.Prices))
	for _, p := range r.Prices {
		if p.Price == nil || math.IsNaN(*p.Price) {
			continue
		}
		series = append(series, domain.PricePoint{Time: p.Timestamp.Time, Price: *p.Price})
	}
	domain.SortSeries(series)
	return series
}

// --- News ---

type newsResponse struct {
	Ticker   string        `json:"ticker"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	PublishedAt flexTime `json:"published_at"`
	Description string   `json:"description"`
}

func decodeNews(body []byte) ([]domain.NewsItem, error) {
	var articles []newsArticle
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &articles); err != nil {
			return nil, err
		}
	} else {
		var resp newsResponse
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, err
		}
		articles = resp.Articles
	}

	items := make([]domain.NewsItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, domain.NewsItem{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			Summary:     a.Description,
			PublishedAt: a.PublishedAt.Time,
		})
	}
	return items, nil
}

// --- Prediction ---

type predictRequest struct {
	Ticker string `json:"ticker"`
}

type predictResponse struct {
	Ticker             string   `json:"ticker"`
	Trend              string   `json:"trend"`
	PredictedPrice     *float64 `json:"predicted_price"`
	Confidence         *float64 `json:"confidence"`
	SentimentScore     *float64 `json:"sentiment_score"`
	PriceChange        *float64 `json:"price_change"`
	PriceChangePercent *float64 `json:"price_change_percent"`
	Timestamp          flexTime `json:"timestamp"`
	Error              string   `json:"error"`
}

func (r *predictResponse) toPrediction(ticker string) *domain.Prediction {
	p := &domain.Prediction{
		Ticker:             r.Ticker,
		Trend:              domain.ParseTrend(r.Trend),
		PredictedPrice:     finite(r.PredictedPrice),
		Confidence:         unitInterval(r.Confidence),
		SentimentScore:     finite(r.SentimentScore),
		PriceChange:        finite(r.PriceChange),
		PriceChangePercent: finite(r.PriceChangePercent),
	}
	if p.Ticker == "" {
		p.Ticker = ticker
	}
	if !r.Timestamp.IsZero() {
		ts := r.Timestamp.Time
		p.GeneratedAt = &ts
	}
	return p
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// unitInterval maps a confidence onto [0,1]. Values in [2, 100] are read as
// percentages and scaled down. Values in (1, 2) could be either a fraction
// out of range or a tiny percentage, so they are unknown, as is anything
// else outside [0, 100].
func unitInterval(v *float64) *float64 {
	v = finite(v)
	if v == nil {
		return nil
	}
	c := *v
	if c > 1 {
		if c < 2 || c > 100 {
			return nil
		}
		c /= 100
	}
	if c < 0 {
		return nil
	}
	return &c
}
