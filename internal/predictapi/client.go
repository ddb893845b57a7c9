// Package predictapi is the HTTP client for the prediction backend: price
// history, news, and model predictions for a ticker, each fetched by its own
// request.
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stockdash/internal/domain"
	"stockdash/internal/news"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Options tunes a Client. Zero values pick the defaults.
type Options struct {
	Timeout        time.Duration // per request, default 15s
	RequestsPerSec float64       // default 10
	PriceDays      int           // history window sent as ?days=, 0 omits it
	NewsLimit      int           // max headlines kept, 0 keeps all
	HTTPClient     *http.Client
}

// Client talks to the prediction backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	priceDays  int
	newsLimit  int
	log        *slog.Logger
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts Options, log *slog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 10
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	// Burst of three lets one full query cycle through at once.
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 3),
		priceDays:  opts.PriceDays,
		newsLimit:  opts.NewsLimit,
		log:        log.With("component", "predictapi"),
	}
}

// Prices returns the ticker's price history, oldest first.
func (c *Client) Prices(ctx context.Context, ticker string) (domain.PriceSeries, error) {
	u := c.baseURL + "/api/stocks/" + url.PathEscape(ticker) + "/prices"
	if c.priceDays > 0 {
		u += "?days=" + strconv.Itoa(c.priceDays)
	}

	body, err := c.do(ctx, "prices", http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var resp pricesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.InvalidResponseError{Op: "prices", Err: err}
	}
	return resp.toSeries(), nil
}

// News returns recent headlines for the ticker, newest first.
func (c *Client) News(ctx context.Context, ticker string) ([]domain.NewsItem, error) {
	u := c.baseURL + "/api/stocks/" + url.PathEscape(ticker) + "/news"

	body, err := c.do(ctx, "news", http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeNews(body)
	if err != nil {
		return nil, &domain.InvalidResponseError{Op: "news", Err: err}
	}
	return news.Clean(items, c.newsLimit), nil
}

// Prediction asks the backend for the ticker's forecast.
func (c *Client) Prediction(ctx context.Context, ticker string) (*domain.Prediction, error) {
	payload, err := json.Marshal(predictRequest{Ticker: ticker})
	if err != nil {
		return nil, fmt.Errorf("encoding predict request: %w", err)
	}

	body, err := c.do(ctx, "predict", http.MethodPost, c.baseURL+"/api/predict", payload)
	if err != nil {
		return nil, err
	}
	var resp predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.InvalidResponseError{Op: "predict", Err: err}
	}
	if resp.Error != "" {
		return nil, &domain.InvalidResponseError{Op: "predict", Err: fmt.Errorf("backend error: %s", resp.Error)}
	}
	return resp.toPrediction(ticker), nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, u string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: waiting for rate limiter: %w", op, err)
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("reading body: %w", err)}
	}
	c.log.Debug("backend response", "op", op, "status", resp.StatusCode,
		"bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.InvalidResponseError{Op: op, StatusCode: resp.StatusCode}
	}
	return body, nil
}
