package news

import (
	"testing"
	"time"

	"stockdash/internal/domain"
)

func TestStripHTML(t *testing.T) {
	got := StripHTML("<p>Apple&nbsp;beats <b>estimates</b></p>\n\n")
	if got != "Apple beats estimates" {
		t.Errorf("StripHTML = %q", got)
	}
	if StripHTML("   ") != "" {
		t.Error("StripHTML of whitespace not empty")
	}
}

func TestExtractSymbolContent(t *testing.T) {
	raw := "<p>Markets were mixed.</p><p>AAPL rose 2% on earnings.</p><p>Oil fell.</p>"
	if got := ExtractSymbolContent(raw, "aapl"); got != "AAPL rose 2% on earnings." {
		t.Errorf("ExtractSymbolContent = %q", got)
	}
	if got := ExtractSymbolContent("<p>Nothing here</p>", "MSFT"); got != "Nothing here" {
		t.Errorf("fallback = %q", got)
	}
}

func TestClean(t *testing.T) {
	t1 := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	items := []domain.NewsItem{
		{Title: "Older story", PublishedAt: t1},
		{Title: "  "},
		{Title: "<b>Undated</b>"},
		{Title: "Newer story - Reuters", Source: "Reuters", PublishedAt: t2},
		{Title: "older STORY", PublishedAt: t2},
	}

	got := Clean(items, 0)
	want := []string{"Newer story", "Older story", "Undated"}
	if len(got) != len(want) {
		t.Fatalf("Clean returned %d items, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Title != w {
			t.Errorf("item %d title = %q, want %q", i, got[i].Title, w)
		}
	}

	if got := Clean(items, 1); len(got) != 1 || got[0].Title != "Newer story" {
		t.Errorf("Clean(limit=1) = %+v", got)
	}
}
