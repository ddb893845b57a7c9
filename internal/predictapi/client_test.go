package predictapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockdash/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stocks/{ticker}/prices", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("ticker") {
		case "AAPL":
			if r.URL.Query().Get("days") != "30" {
				t.Errorf("days = %q, want 30", r.URL.Query().Get("days"))
			}
			w.Write([]byte(`{"ticker":"AAPL","prices":[
				{"timestamp":2,"price":155},
				{"timestamp":1,"price":150},
				{"timestamp":"2025-02-12","price":null},
				{"timestamp":1739318400000,"price":160}]}`))
		case "BAD":
			w.Write([]byte(`{"prices":[{"timestamp":"yesterday","price":1}]}`))
		default:
			http.Error(w, "unknown ticker", http.StatusNotFound)
		}
	})
	mux.HandleFunc("GET /api/stocks/{ticker}/news", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("ticker") {
		case "AAPL":
			w.Write([]byte(`{"ticker":"AAPL","articles":[
				{"title":"Apple <b>beats</b>","url":"https://example.com/a","published_at":"2025-02-10T09:00:00Z"},
				{"title":"Apple beats"},
				{"title":"Vision Pro sales","published_at":"2025-02-11T09:00:00"}]}`))
		case "ARR":
			w.Write([]byte(`[{"title":"Bare array"}]`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	mux.HandleFunc("POST /api/predict", func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		switch req.Ticker {
		case "AAPL":
			w.Write([]byte(`{"ticker":"AAPL","trend":"up","predicted_price":160.5,"confidence":0.82,
				"sentiment_score":0,"timestamp":"2025-02-10T12:30:00.123456"}`))
		case "PCT":
			w.Write([]byte(`{"trend":"sideways","confidence":75}`))
		case "ERR":
			w.Write([]byte(`{"error":"model unavailable"}`))
		default:
			w.Write([]byte(`not json`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL+"/", Options{PriceDays: 30, RequestsPerSec: 1000}, testLogger())
}

func TestPrices(t *testing.T) {
	c := newTestClient(newTestServer(t))

	series, err := c.Prices(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("len(series) = %d, want 3 (null price dropped)", len(series))
	}
	wantPrices := []float64{150, 155, 160}
	for i, w := range wantPrices {
		if series[i].Price != w {
			t.Errorf("series[%d].Price = %v, want %v", i, series[i].Price, w)
		}
	}
	if !series[0].Time.Equal(time.Unix(1, 0)) {
		t.Errorf("series[0].Time = %v, want unix 1", series[0].Time)
	}
	if !series[2].Time.Equal(time.UnixMilli(1739318400000)) {
		t.Errorf("millisecond timestamp parsed as %v", series[2].Time)
	}
}

func TestPricesErrors(t *testing.T) {
	c := newTestClient(newTestServer(t))

	_, err := c.Prices(context.Background(), "NOPE")
	var invalid *domain.InvalidResponseError
	if !errors.As(err, &invalid) || invalid.StatusCode != http.StatusNotFound {
		t.Errorf("unknown ticker error = %v, want 404 InvalidResponseError", err)
	}

	_, err = c.Prices(context.Background(), "BAD")
	if !errors.As(err, &invalid) || invalid.StatusCode != 0 {
		t.Errorf("bad timestamp error = %v, want decode InvalidResponseError", err)
	}
}

func TestNews(t *testing.T) {
	c := newTestClient(newTestServer(t))

	items, err := c.News(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (duplicate dropped): %+v", len(items), items)
	}
	if items[0].Title != "Vision Pro sales" || items[1].Title != "Apple beats" {
		t.Errorf("titles = %q, %q", items[0].Title, items[1].Title)
	}
	if items[1].URL != "https://example.com/a" {
		t.Errorf("URL = %q", items[1].URL)
	}

	items, err = c.News(context.Background(), "ARR")
	if err != nil || len(items) != 1 || items[0].Title != "Bare array" {
		t.Errorf("bare array news = %+v, %v", items, err)
	}

	_, err = c.News(context.Background(), "DOWN")
	var invalid *domain.InvalidResponseError
	if !errors.As(err, &invalid) || invalid.StatusCode != http.StatusBadGateway {
		t.Errorf("502 error = %v", err)
	}
}

func TestPrediction(t *testing.T) {
	c := newTestClient(newTestServer(t))

	p, err := c.Prediction(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Prediction: %v", err)
	}
	if p.Ticker != "AAPL" || p.Trend != domain.TrendUp {
		t.Errorf("ticker/trend = %q/%q", p.Ticker, p.Trend)
	}
	if p.PredictedPrice == nil || *p.PredictedPrice != 160.5 {
		t.Errorf("PredictedPrice = %v", p.PredictedPrice)
	}
	if p.Confidence == nil || *p.Confidence != 0.82 {
		t.Errorf("Confidence = %v", p.Confidence)
	}
	// Zero is a real value, distinct from missing.
	if p.SentimentScore == nil || *p.SentimentScore != 0 {
		t.Errorf("SentimentScore = %v, want pointer to 0", p.SentimentScore)
	}
	if p.PriceChange != nil || p.PriceChangePercent != nil {
		t.Error("missing change fields decoded as non-nil")
	}
	if p.GeneratedAt == nil || p.GeneratedAt.Hour() != 12 {
		t.Errorf("GeneratedAt = %v", p.GeneratedAt)
	}
}

func TestPredictionNormalization(t *testing.T) {
	c := newTestClient(newTestServer(t))

	p, err := c.Prediction(context.Background(), "PCT")
	if err != nil {
		t.Fatalf("Prediction: %v", err)
	}
	if p.Ticker != "PCT" {
		t.Errorf("Ticker = %q, want request ticker", p.Ticker)
	}
	if p.Trend != domain.TrendFlat {
		t.Errorf("Trend = %q, want flat", p.Trend)
	}
	if p.Confidence == nil || *p.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", p.Confidence)
	}
	if p.PredictedPrice != nil || p.GeneratedAt != nil {
		t.Error("absent fields not nil")
	}
}

func TestPredictionErrors(t *testing.T) {
	c := newTestClient(newTestServer(t))

	var invalid *domain.InvalidResponseError
	if _, err := c.Prediction(context.Background(), "ERR"); !errors.As(err, &invalid) {
		t.Errorf("backend error field = %v, want InvalidResponseError", err)
	}
	if _, err := c.Prediction(context.Background(), "JUNK"); !errors.As(err, &invalid) {
		t.Errorf("non-JSON body = %v, want InvalidResponseError", err)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, Options{RequestsPerSec: 1000}, testLogger())
	_, err := c.Prices(context.Background(), "AAPL")
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("closed server error = %v (%T), want NetworkError", err, err)
	}
}

func TestUnitInterval(t *testing.T) {
	tests := []struct {
		in   *float64
		want *float64
	}{
		{nil, nil},
		{domain.Float(0), domain.Float(0)},
		{domain.Float(0.5), domain.Float(0.5)},
		{domain.Float(1), domain.Float(1)},
		{domain.Float(82), domain.Float(0.82)},
		{domain.Float(2), domain.Float(0.02)},
		{domain.Float(100), domain.Float(1)},
		{domain.Float(1.5), nil},
		{domain.Float(1.99), nil},
		{domain.Float(-0.1), nil},
		{domain.Float(250), nil},
	}
	for _, tt := range tests {
		got := unitInterval(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("unitInterval(%v) = %v, want nil", *tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("unitInterval(%v) = %v, want %v", *tt.in, got, *tt.want)
		}
	}
}
