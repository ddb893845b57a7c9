// Package domain defines the market data shapes shown on the dashboard:
// tickers, price series, news items, and model predictions.
package domain

import (
	"sort"
	"strings"
	"time"
)

// PricePoint is a single observation in a price series.
type PricePoint struct {
	Time  time.Time `json:"timestamp"`
	Price float64   `json:"price"`
}

// PriceSeries is ordered by Time ascending. Duplicate timestamps are allowed.
type PriceSeries []PricePoint

// SortSeries sorts points by time in place, keeping the arrival order of
// points that share a timestamp.
func SortSeries(s PriceSeries) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Time.Before(s[j].Time)
	})
}

// Last returns the most recent point, or false for an empty series.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// Range returns the lowest and highest price in the series.
func (s PriceSeries) Range() (low, high float64, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	low, high = s[0].Price, s[0].Price
	for _, p := range s[1:] {
		if p.Price < low {
			low = p.Price
		}
		if p.Price > high {
			high = p.Price
		}
	}
	return low, high, true
}

// NewsItem is a single headline for a ticker. Everything but Title is optional.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
}

// Trend is the predicted price direction.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = ""
)

// ParseTrend maps a wire value to a Trend. Anything unrecognized is
// TrendUnknown.
func ParseTrend(s string) Trend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "bullish":
		return TrendUp
	case "down", "bearish":
		return TrendDown
	case "flat", "sideways", "neutral":
		return TrendFlat
	default:
		return TrendUnknown
	}
}

// Prediction is a model-generated forecast for a ticker.
//
// Numeric fields are nil when the backend omitted them. A nil value means
// "unknown" and must never be rendered as zero.
type Prediction struct {
	Ticker             string     `json:"ticker"`
	Trend              Trend      `json:"trend"`
	PredictedPrice     *float64   `json:"predictedPrice,omitempty"`
	Confidence         *float64   `json:"confidence,omitempty"`
	SentimentScore     *float64   `json:"sentimentScore,omitempty"`
	PriceChange        *float64   `json:"priceChange,omitempty"`
	PriceChangePercent *float64   `json:"priceChangePercent,omitempty"`
	GeneratedAt        *time.Time `json:"generatedAt,omitempty"`
}

// Float returns a pointer to v, for building Predictions.
func Float(v float64) *float64 {
	return &v
}
