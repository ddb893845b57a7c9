package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"stockdash/internal/domain"
	"stockdash/internal/query"
	"stockdash/internal/viewstate"
)

// Selector issues query cycles. *query.Controller implements it.
type Selector interface {
	SetSelection(ticker string) error
	Refresh() error
	Selection() string
}

// ViewSource publishes view states. *viewstate.Store implements it.
type ViewSource interface {
	Current() viewstate.ViewState
	Subscribe() (id int, ch <-chan viewstate.ViewState)
	Unsubscribe(id int)
}

// Server serves the dashboard bridge API.
type Server struct {
	ctrl    Selector
	views   ViewSource
	popular []string
	log     *slog.Logger
	now     func() time.Time

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates a bridge server over the given controller and store.
func NewServer(ctrl Selector, views ViewSource, popular []string, log *slog.Logger) *Server {
	return &Server{
		ctrl:    ctrl,
		views:   views,
		popular: popular,
		log:     log.With("component", "httpapi"),
		now:     time.Now,
		closing: make(chan struct{}),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("PUT /api/selection/{ticker}", s.handleSelect)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/tickers", s.handleTickers)
	mux.HandleFunc("GET /ws", s.handleWS)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// Close ends all WebSocket streams. http.Server.Shutdown does not reach
// hijacked connections, so callers run both.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toViewJSON(s.views.Current(), s.now()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if err := s.ctrl.SetSelection(ticker); err != nil {
		s.writeCommandError(w, err)
		return
	}
	s.log.Info("selection changed", "ticker", s.ctrl.Selection())
	writeJSON(w, http.StatusAccepted, toViewJSON(s.views.Current(), s.now()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.Refresh(); err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toViewJSON(s.views.Current(), s.now()))
}

func (s *Server) handleTickers(w http.ResponseWriter, _ *http.Request) {
	popular := s.popular
	if popular == nil {
		popular = []string{}
	}
	writeJSON(w, http.StatusOK, TickersJSON{Popular: popular, Selection: s.ctrl.Selection()})
}

func (s *Server) writeCommandError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, query.ErrNoSelection):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, query.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("command failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
