// Package app assembles the dashboard core from configuration: the fetchers
// for each source, the view-state store and the query controller.
package app

import (
	"log/slog"

	"stockdash/internal/config"
	"stockdash/internal/domain"
	"stockdash/internal/marketdata"
	"stockdash/internal/predictapi"
	"stockdash/internal/query"
	"stockdash/internal/viewstate"
)

// App is a wired dashboard core shared by the terminal UI and the bridge.
type App struct {
	Store      *viewstate.Store
	Controller *query.Controller
}

// New builds the core for cfg. Nothing is fetched until a ticker is
// selected.
func New(cfg *config.Config, log *slog.Logger) *App {
	bindings := Bindings(cfg, log)
	store := viewstate.NewStore(log, query.Sources(bindings)...)
	return &App{
		Store:      store,
		Controller: query.NewController(store, log, bindings...),
	}
}

// Close cancels in-flight fetches.
func (a *App) Close() {
	a.Controller.Close()
}

// Bindings returns one binding per dashboard source. Prices and news come
// from the prediction backend unless Alpaca credentials are configured and
// the matching alpaca switch is on.
func Bindings(cfg *config.Config, log *slog.Logger) []query.Binding {
	api := predictapi.NewClient(cfg.API.BaseURL, predictapi.Options{
		Timeout:        cfg.API.Timeout,
		RequestsPerSec: cfg.API.RequestsPerSec,
		PriceDays:      cfg.Dashboard.PriceDays,
		NewsLimit:      cfg.Dashboard.NewsLimit,
	}, log)

	var (
		prices query.Fetcher[domain.PriceSeries] = query.FetcherFunc[domain.PriceSeries](api.Prices)
		news   query.Fetcher[[]domain.NewsItem]  = query.FetcherFunc[[]domain.NewsItem](api.News)
		pred   query.Fetcher[*domain.Prediction] = query.FetcherFunc[*domain.Prediction](api.Prediction)
	)

	if a := cfg.Alpaca; a.Enabled() && (a.PricesFromAlpaca || a.NewsFromAlpaca) {
		src := marketdata.New(a.APIKey, a.APISecret, a.DataURL, cfg.Dashboard.PriceDays, cfg.Dashboard.NewsLimit, log)
		if a.PricesFromAlpaca {
			prices = query.FetcherFunc[domain.PriceSeries](src.Prices)
			log.Info("prices from alpaca")
		}
		if a.NewsFromAlpaca {
			news = query.FetcherFunc[[]domain.NewsItem](src.News)
			log.Info("news from alpaca")
		}
	}

	return []query.Binding{
		query.Bind(viewstate.Prices, prices),
		query.Bind(viewstate.News, news),
		query.Bind(viewstate.Prediction, pred),
	}
}
