package stockdash

import "time"

// Panel statuses as sent by the bridge.
const (
	StatusIdle    = "idle"
	StatusLoading = "loading"
	StatusLoaded  = "loaded"
	StatusFailed  = "failed"
)

// SourceJSON is the common status part of every panel.
type SourceJSON struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// PricePoint is one observation of the price series.
type PricePoint struct {
	Time  time.Time `json:"timestamp"`
	Price float64   `json:"price"`
}

// PricesJSON is the price panel.
type PricesJSON struct {
	SourceJSON
	Points    []PricePoint `json:"points,omitempty"`
	Last      string       `json:"last,omitempty"`
	Low       string       `json:"low,omitempty"`
	High      string       `json:"high,omitempty"`
	Change    string       `json:"change,omitempty"`
	Sparkline string       `json:"sparkline,omitempty"`
}

// NewsItemJSON is one headline with its age already rendered.
type NewsItemJSON struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	Summary string `json:"summary,omitempty"`
	Age     string `json:"age"`
}

// NewsJSON is the news panel.
type NewsJSON struct {
	SourceJSON
	Items []NewsItemJSON `json:"items,omitempty"`
}

// PredictionJSON is the prediction panel. Every value is pre-formatted and
// reads "N/A" when the backend did not supply it. Trend is "up", "down",
// "flat" or empty.
type PredictionJSON struct {
	SourceJSON
	Trend          string `json:"trend,omitempty"`
	TrendLabel     string `json:"trendLabel,omitempty"`
	PredictedPrice string `json:"predictedPrice,omitempty"`
	Confidence     string `json:"confidence,omitempty"`
	Change         string `json:"change,omitempty"`
	Sentiment      string `json:"sentiment,omitempty"`
	Generated      string `json:"generated,omitempty"`
}

// ViewJSON is the full dashboard snapshot. Token identifies the query cycle
// the snapshot belongs to and only increases.
type ViewJSON struct {
	Selection  string         `json:"selection"`
	Token      uint64         `json:"token"`
	Loading    bool           `json:"loading"`
	Prices     PricesJSON     `json:"prices"`
	News       NewsJSON       `json:"news"`
	Prediction PredictionJSON `json:"prediction"`
}

// TickersJSON lists the shortcut tickers and the current selection.
type TickersJSON struct {
	Popular   []string `json:"popular"`
	Selection string   `json:"selection"`
}
