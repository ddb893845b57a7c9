package query

import (
	"context"

	"stockdash/internal/viewstate"
)

// Fetcher retrieves one facet of a ticker's data.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, ticker string) (T, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, ticker string) (T, error)

// Fetch calls f.
func (f FetcherFunc[T]) Fetch(ctx context.Context, ticker string) (T, error) {
	return f(ctx, ticker)
}

// Binding attaches a fetcher to the view-state source it fills.
type Binding struct {
	Source viewstate.Source
	fetch  func(ctx context.Context, ticker string) (any, error)
}

// Bind ties f to src. The value stored in the view state has type T.
func Bind[T any](src viewstate.Source, f Fetcher[T]) Binding {
	return Binding{
		Source: src,
		fetch: func(ctx context.Context, ticker string) (any, error) {
			return f.Fetch(ctx, ticker)
		},
	}
}

// Sources lists the sources covered by bindings, in order.
func Sources(bindings []Binding) []viewstate.Source {
	out := make([]viewstate.Source, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Source)
	}
	return out
}
