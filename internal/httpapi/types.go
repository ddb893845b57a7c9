// Package httpapi exposes the dashboard view state to browsers: JSON
// snapshots over HTTP, selection and refresh commands, and a WebSocket
// stream of every state transition.
package httpapi

import (
	"time"

	"stockdash/internal/dashboard"
	"stockdash/internal/viewstate"
	"stockdash/pkg/stockdash"
)

// The wire types live in pkg/stockdash so Go clients outside this module can
// decode them.
type (
	ViewJSON    = stockdash.ViewJSON
	TickersJSON = stockdash.TickersJSON
)

func sourceJSON(st viewstate.SourceState) stockdash.SourceJSON {
	return stockdash.SourceJSON{Status: st.Status.String(), Reason: st.Reason}
}

func toViewJSON(v viewstate.ViewState, now time.Time) ViewJSON {
	out := ViewJSON{
		Selection: v.Selection,
		Token:     uint64(v.Token),
		Loading:   v.Loading(),
	}

	series, st := v.Prices()
	out.Prices.SourceJSON = sourceJSON(st)
	if st.Status == viewstate.Loaded {
		out.Prices.Points = make([]stockdash.PricePoint, 0, len(series))
		for _, pt := range series {
			out.Prices.Points = append(out.Prices.Points, stockdash.PricePoint{Time: pt.Time, Price: pt.Price})
		}
		if sum, ok := dashboard.Summarize(series); ok {
			out.Prices.Last = dashboard.FormatPrice(&sum.Last)
			out.Prices.Low = dashboard.FormatPrice(&sum.Low)
			out.Prices.High = dashboard.FormatPrice(&sum.High)
			out.Prices.Change = dashboard.FormatChange(&sum.Change, sum.ChangePct)
			out.Prices.Sparkline = dashboard.Sparkline(series, 60)
		}
	}

	items, st := v.News()
	out.News.SourceJSON = sourceJSON(st)
	for _, it := range items {
		var published *time.Time
		if !it.PublishedAt.IsZero() {
			published = &it.PublishedAt
		}
		out.News.Items = append(out.News.Items, stockdash.NewsItemJSON{
			Title:   it.Title,
			URL:     it.URL,
			Source:  it.Source,
			Summary: it.Summary,
			Age:     dashboard.FormatAge(published, now),
		})
	}

	p, st := v.Prediction()
	out.Prediction.SourceJSON = sourceJSON(st)
	if p != nil {
		out.Prediction.Trend = string(p.Trend)
		out.Prediction.TrendLabel = dashboard.TrendLabel(p.Trend)
		out.Prediction.PredictedPrice = dashboard.FormatPrice(p.PredictedPrice)
		out.Prediction.Confidence = dashboard.FormatConfidence(p.Confidence)
		out.Prediction.Change = dashboard.FormatChange(p.PriceChange, p.PriceChangePercent)
		out.Prediction.Sentiment = dashboard.FormatSentiment(p.SentimentScore)
		out.Prediction.Generated = dashboard.FormatAge(p.GeneratedAt, now)
	}
	return out
}
