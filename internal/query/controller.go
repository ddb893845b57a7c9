// Package query turns ticker selections into query cycles: one concurrent
// fetch per data source, each tagged with the cycle's token and settled into
// the view-state store.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"stockdash/internal/domain"
	"stockdash/internal/viewstate"
)

// ErrNoSelection is returned by Refresh before any ticker was selected.
var ErrNoSelection = errors.New("no ticker selected")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("controller closed")

// Dispatcher receives the events of each query cycle. *viewstate.Store
// implements it.
type Dispatcher interface {
	Dispatch(e viewstate.Event) (viewstate.ViewState, bool)
}

// Controller owns the current selection and the current token. All merging
// happens in the Dispatcher.
type Controller struct {
	out      Dispatcher
	bindings []Binding
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	selection   string
	token       viewstate.Token
	cycleCancel context.CancelFunc
	closed      bool
}

// NewController creates a controller that fetches every binding per cycle
// and settles the results into out.
func NewController(out Dispatcher, log *slog.Logger, bindings ...Binding) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		out:      out,
		bindings: bindings,
		log:      log.With("component", "query"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetSelection validates and normalizes ticker and starts a query cycle for
// it. Selecting the current ticker again is a no-op and leaves in-flight
// fetches alone; use Refresh to force a new cycle.
func (c *Controller) SetSelection(ticker string) error {
	t, err := domain.NormalizeTicker(ticker)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if t == c.selection {
		return nil
	}
	c.startLocked(t)
	return nil
}

// Refresh starts a new cycle for the current selection even if it has not
// changed.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.selection == "" {
		return ErrNoSelection
	}
	c.startLocked(c.selection)
	return nil
}

// Selection returns the ticker of the most recently started cycle.
func (c *Controller) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Token returns the current cycle's token.
func (c *Controller) Token() viewstate.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Wait blocks until every fetch started so far has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight fetches and waits for them to settle. Later calls
// to SetSelection and Refresh return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// startLocked begins a cycle. The Started event is dispatched before any
// fetch runs, and cycles start under c.mu, so tokens reach the dispatcher in
// increasing order.
func (c *Controller) startLocked(ticker string) {
	if c.cycleCancel != nil {
		// The superseded cycle's results are dropped by token anyway; this
		// only stops its requests early.
		c.cycleCancel()
	}
	c.token++
	c.selection = ticker
	tok := c.token

	ctx, cancel := context.WithCancel(c.ctx)
	c.cycleCancel = cancel

	c.out.Dispatch(viewstate.Started{Token: tok, Selection: ticker})
	c.log.Info("query cycle started", "ticker", ticker, "token", tok, "sources", len(c.bindings))

	for _, b := range c.bindings {
		c.wg.Add(1)
		go c.run(ctx, tok, ticker, b)
	}
}

func (c *Controller) run(ctx context.Context, tok viewstate.Token, ticker string, b Binding) {
	defer c.wg.Done()

	v, err := c.fetch(ctx, ticker, b)

	var out viewstate.Outcome
	if err != nil {
		out = viewstate.Failure(Reason(err))
	} else {
		out = viewstate.Success(v)
	}

	_, applied := c.out.Dispatch(viewstate.Settled{Token: tok, Source: b.Source, Outcome: out})
	switch {
	case !applied:
		c.log.Debug("superseded result dropped", "ticker", ticker, "source", b.Source, "token", tok)
	case err != nil:
		c.log.Warn("fetch failed", "ticker", ticker, "source", b.Source, "token", tok, "error", err)
	default:
		c.log.Debug("fetch settled", "ticker", ticker, "source", b.Source, "token", tok)
	}
}

// fetch calls the binding and converts a panic into an error so a broken
// fetcher fails its own panel only.
func (c *Controller) fetch(ctx context.Context, ticker string, b Binding) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s fetcher panicked: %v", b.Source, r)
		}
	}()
	return b.fetch(ctx, ticker)
}
