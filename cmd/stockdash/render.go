package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"stockdash/internal/dashboard"
	"stockdash/internal/domain"
	"stockdash/internal/viewstate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sparkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)

// sideBySideWidth is the terminal width from which prices and prediction
// share a row.
const sideBySideWidth = 100

// directionStyle colors a value by its sign.
func directionStyle(v *float64) lipgloss.Style {
	switch dashboard.Direction(v) {
	case 1:
		return gainStyle
	case -1:
		return lossStyle
	}
	return valueStyle
}

func trendStyle(t domain.Trend) lipgloss.Style {
	switch t {
	case domain.TrendUp:
		return gainStyle
	case domain.TrendDown:
		return lossStyle
	}
	return valueStyle
}

// renderContent draws the three panels for v. spin is the current spinner
// frame used for loading panels.
func renderContent(v viewstate.ViewState, width int, now time.Time, spin string) string {
	if v.Selection == "" {
		return dimStyle.Render("\n  No ticker selected. Press / to enter one.")
	}

	width = max(width, 40)

	// Panel widths exclude the border; content widths also exclude padding.
	if width >= sideBySideWidth {
		left := (width - 4) / 2
		right := width - 4 - left
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			panel("Prices", renderPrices(v, left-2, spin), left),
			panel("Prediction", renderPrediction(v, now, spin), right),
		)
		return top + "\n" + panel("News", renderNews(v, width-4, now, spin), width-2)
	}
	full := width - 2
	return strings.Join([]string{
		panel("Prices", renderPrices(v, full-2, spin), full),
		panel("Prediction", renderPrediction(v, now, spin), full),
		panel("News", renderNews(v, full-2, now, spin), full),
	}, "\n")
}

func panel(title, body string, width int) string {
	return panelStyle.Width(width).Render(titleStyle.Render(title) + "\n" + body)
}

// statusBody renders a panel that has no value to show, or "" when the
// source is Loaded.
func statusBody(st viewstate.SourceState, spin string) string {
	switch st.Status {
	case viewstate.Idle:
		return dimStyle.Render("waiting")
	case viewstate.Loading:
		return dimStyle.Render(spin + " loading...")
	case viewstate.Failed:
		return failStyle.Render("✗ " + st.Reason)
	}
	return ""
}

func field(label, value string, style lipgloss.Style) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + style.Render(value)
}

func renderPrices(v viewstate.ViewState, width int, spin string) string {
	series, st := v.Prices()
	if body := statusBody(st, spin); body != "" {
		return body
	}
	sum, ok := dashboard.Summarize(series)
	if !ok {
		return dimStyle.Render("no price data")
	}
	lines := []string{
		field("Last", dashboard.FormatPrice(&sum.Last), valueStyle),
		field("Change", dashboard.FormatChange(&sum.Change, sum.ChangePct), directionStyle(&sum.Change)),
		field("Range", dashboard.FormatPrice(&sum.Low)+" - "+dashboard.FormatPrice(&sum.High), valueStyle),
		field("Period", fmt.Sprintf("%s to %s (%d pts)", sum.From.Format("Jan 2"), sum.To.Format("Jan 2"), sum.Points), dimStyle),
		sparkStyle.Render(dashboard.Sparkline(series, max(width, 10))),
	}
	return strings.Join(lines, "\n")
}

func renderPrediction(v viewstate.ViewState, now time.Time, spin string) string {
	p, st := v.Prediction()
	if body := statusBody(st, spin); body != "" {
		return body
	}
	if p == nil {
		return dimStyle.Render("no prediction")
	}
	lines := []string{
		field("Trend", dashboard.TrendLabel(p.Trend), trendStyle(p.Trend).Bold(true)),
		field("Target", dashboard.FormatPrice(p.PredictedPrice), valueStyle),
		field("Change", dashboard.FormatChange(p.PriceChange, p.PriceChangePercent), directionStyle(p.PriceChange)),
		field("Confidence", dashboard.FormatConfidence(p.Confidence), valueStyle),
		field("Sentiment", dashboard.FormatSentiment(p.SentimentScore), directionStyle(p.SentimentScore)),
		field("Generated", dashboard.FormatAge(p.GeneratedAt, now), dimStyle),
	}
	return strings.Join(lines, "\n")
}

func renderNews(v viewstate.ViewState, width int, now time.Time, spin string) string {
	items, st := v.News()
	if body := statusBody(st, spin); body != "" {
		return body
	}
	if len(items) == 0 {
		return dimStyle.Render("no recent news")
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		var published *time.Time
		if !it.PublishedAt.IsZero() {
			published = &it.PublishedAt
		}
		meta := dashboard.FormatAge(published, now)
		if it.Source != "" {
			meta = it.Source + " · " + meta
		}
		b.WriteString(valueStyle.Render(dashboard.Truncate(it.Title, width)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(dashboard.Truncate(meta, width)))
		if it.Summary != "" {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render(dashboard.Truncate(it.Summary, width)))
		}
	}
	return b.String()
}
