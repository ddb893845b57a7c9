// Package news tidies headline lists before they reach the dashboard:
// HTML stripped, blanks and duplicates removed, newest first.
package news

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"stockdash/internal/domain"
)

// --- HTML helpers ---

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)
var htmlParaRe = regexp.MustCompile(`(?i)</?(p|br|div|li|h[1-6])\b[^>]*>`)

// StripHTML removes HTML tags and normalizes whitespace.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// ExtractSymbolContent extracts paragraphs mentioning the symbol from HTML content.
// Falls back to full stripped HTML if no paragraphs mention the symbol.
func ExtractSymbolContent(rawHTML, symbol string) string {
	chunks := htmlParaRe.Split(rawHTML, -1)
	var matched []string
	upper := strings.ToUpper(symbol)
	for _, chunk := range chunks {
		plain := StripHTML(chunk)
		if plain == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(plain), upper) {
			matched = append(matched, plain)
		}
	}
	if len(matched) > 0 {
		return strings.Join(matched, " ")
	}
	return StripHTML(rawHTML)
}

// --- Cleaning ---

// Clean strips HTML from titles and summaries, drops items without a title,
// removes duplicate titles (case-insensitive, first one wins) and orders the
// rest newest first. Items without a publish time sort last. A limit <= 0
// keeps everything.
func Clean(items []domain.NewsItem, limit int) []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it.Title = trimSourceSuffix(StripHTML(it.Title), it.Source)
		it.Summary = StripHTML(it.Summary)
		if it.Title == "" {
			continue
		}
		key := strings.ToLower(it.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PublishedAt, out[j].PublishedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// trimSourceSuffix drops the " - Publisher" tail aggregators append to
// headlines when it repeats the item's source.
func trimSourceSuffix(title, source string) string {
	if source == "" {
		return title
	}
	if idx := strings.LastIndex(title, " - "); idx > 0 && strings.EqualFold(strings.TrimSpace(title[idx+3:]), source) {
		return title[:idx]
	}
	return title
}
