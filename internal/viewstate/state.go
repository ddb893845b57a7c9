// Package viewstate holds the dashboard's view model: one state per data
// source, the selection it belongs to, and the token of the query cycle that
// produced it.
package viewstate

import (
	"fmt"

	"stockdash/internal/domain"
)

// Source names one independently fetched facet of a selection.
type Source string

const (
	Prices     Source = "prices"
	News       Source = "news"
	Prediction Source = "prediction"
)

// DefaultSources are the facets the dashboard shows.
var DefaultSources = []Source{Prices, News, Prediction}

// Token identifies a query cycle. Tokens only increase; zero means no cycle
// has started.
type Token uint64

// Status is the variant of a SourceState.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

var statusNames = [...]string{"idle", "loading", "loaded", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// SourceState is the state of one source. Value is set only when Loaded and
// Reason only when Failed.
type SourceState struct {
	Status Status `json:"status"`
	Value  any    `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ViewState is the snapshot handed to renderers. It is immutable: Reduce
// always builds a new Sources map, so holders may keep a ViewState without
// copying it. Renderers must not write to Sources.
type ViewState struct {
	Selection string                 `json:"selection"`
	Token     Token                  `json:"token"`
	Sources   map[Source]SourceState `json:"sources"`
}

// New returns an empty view state with every source Idle.
func New(sources ...Source) ViewState {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	m := make(map[Source]SourceState, len(sources))
	for _, src := range sources {
		m[src] = SourceState{Status: Idle}
	}
	return ViewState{Sources: m}
}

// Source returns the state of src. Unknown sources read as Idle.
func (v ViewState) Source(src Source) SourceState {
	return v.Sources[src]
}

// Loading reports whether any source is still in flight.
func (v ViewState) Loading() bool {
	for _, st := range v.Sources {
		if st.Status == Loading {
			return true
		}
	}
	return false
}

// Prices returns the price series (if loaded) and the source state.
func (v ViewState) Prices() (domain.PriceSeries, SourceState) {
	st := v.Sources[Prices]
	series, _ := st.Value.(domain.PriceSeries)
	return series, st
}

// News returns the news items (if loaded) and the source state.
func (v ViewState) News() ([]domain.NewsItem, SourceState) {
	st := v.Sources[News]
	items, _ := st.Value.([]domain.NewsItem)
	return items, st
}

// Prediction returns the prediction (if loaded) and the source state.
func (v ViewState) Prediction() (*domain.Prediction, SourceState) {
	st := v.Sources[Prediction]
	p, _ := st.Value.(*domain.Prediction)
	return p, st
}
