// Package marketdata provides price and news fetchers backed by the Alpaca
// market-data API, as alternatives to the prediction backend's endpoints.
package marketdata

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stockdash/internal/domain"
	"stockdash/internal/news"
)

// alpacaAPI is the subset of *marketdata.Client used here.
type alpacaAPI interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

// Compile-time interface check.
var _ alpacaAPI = (*marketdata.Client)(nil)

// Source fetches daily closes and news for a ticker from Alpaca.
type Source struct {
	client    alpacaAPI
	days      int
	newsLimit int
	now       func() time.Time
	log       *slog.Logger
}

// New creates a Source with the given credentials. days is the price
// history window; newsLimit caps headlines.
func New(apiKey, apiSecret, dataURL string, days, newsLimit int, log *slog.Logger) *Source {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return newSource(marketdata.NewClient(opts), days, newsLimit, log)
}

func newSource(client alpacaAPI, days, newsLimit int, log *slog.Logger) *Source {
	if days <= 0 {
		days = 30
	}
	if newsLimit <= 0 {
		newsLimit = 20
	}
	return &Source{
		client:    client,
		days:      days,
		newsLimit: newsLimit,
		now:       time.Now,
		log:       log.With("component", "alpaca"),
	}
}

// Prices returns daily closing prices over the configured window.
func (s *Source) Prices(ctx context.Context, ticker string) (domain.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := s.now()
	bars, err := s.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     end.AddDate(0, 0, -s.days),
		End:       end,
	})
	if err != nil {
		return nil, classify("alpaca bars", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series := make(domain.PriceSeries, 0, len(bars))
	for _, b := range bars {
		series = append(series, domain.PricePoint{Time: b.Timestamp, Price: b.Close})
	}
	domain.SortSeries(series)
	s.log.Debug("fetched bars", "ticker", ticker, "bars", len(series))
	return series, nil
}

// News returns recent headlines for the ticker, newest first.
func (s *Source) News(ctx context.Context, ticker string) ([]domain.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := s.now()
	alpacaNews, err := s.client.GetNews(marketdata.GetNewsRequest{
		Symbols:        []string{ticker},
		Start:          end.AddDate(0, 0, -7),
		End:            end,
		TotalLimit:     s.newsLimit,
		IncludeContent: true,
		Sort:           marketdata.SortDesc,
	})
	if err != nil {
		return nil, classify("alpaca news", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]domain.NewsItem, 0, len(alpacaNews))
	for _, a := range alpacaNews {
		summary := a.Summary
		if summary == "" && a.Content != "" {
			summary = news.ExtractSymbolContent(a.Content, ticker)
		}
		items = append(items, domain.NewsItem{
			Title:       a.Headline,
			URL:         a.URL,
			Source:      "alpaca",
			Summary:     summary,
			PublishedAt: a.CreatedAt,
		})
	}
	return news.Clean(items, s.newsLimit), nil
}

// classify maps SDK errors onto the dashboard's error kinds: transport
// failures are network errors, everything else is a bad response.
func classify(op string, err error) error {
	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &domain.NetworkError{Op: op, Err: err}
	}
	return &domain.InvalidResponseError{Op: op, Err: err}
}
