package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"stockdash/internal/domain"
	"stockdash/internal/query"
	"stockdash/internal/viewstate"
	"stockdash/pkg/stockdash"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type bridge struct {
	srv   *Server
	ctrl  *query.Controller
	store *viewstate.Store
}

func newBridge(t *testing.T) *bridge {
	t.Helper()
	log := testLogger()
	store := viewstate.NewStore(log)
	prices := query.FetcherFunc[domain.PriceSeries](func(_ context.Context, ticker string) (domain.PriceSeries, error) {
		return domain.PriceSeries{
			{Time: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), Price: 150},
			{Time: time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC), Price: 160.5},
		}, nil
	})
	newsFetch := query.FetcherFunc[[]domain.NewsItem](func(context.Context, string) ([]domain.NewsItem, error) {
		return nil, &domain.NetworkError{Op: "news", Err: errors.New("connection refused")}
	})
	predict := query.FetcherFunc[*domain.Prediction](func(_ context.Context, ticker string) (*domain.Prediction, error) {
		return &domain.Prediction{Ticker: ticker, Trend: domain.TrendUp, PredictedPrice: domain.Float(165)}, nil
	})
	ctrl := query.NewController(store, log,
		query.Bind[domain.PriceSeries](viewstate.Prices, prices),
		query.Bind[[]domain.NewsItem](viewstate.News, newsFetch),
		query.Bind[*domain.Prediction](viewstate.Prediction, predict),
	)
	t.Cleanup(ctrl.Close)
	srv := NewServer(ctrl, store, []string{"AAPL", "MSFT"}, log)
	srv.now = func() time.Time { return time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(srv.Close)
	return &bridge{srv: srv, ctrl: ctrl, store: store}
}

func (b *bridge) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	b.srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) ViewJSON {
	t.Helper()
	var v ViewJSON
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding view: %v", err)
	}
	return v
}

func TestViewBeforeSelection(t *testing.T) {
	b := newBridge(t)
	rec := b.do(t, http.MethodGet, "/api/view")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	v := decodeView(t, rec)
	if v.Selection != "" || v.Token != 0 || v.Loading {
		t.Errorf("view = %+v, want empty", v)
	}
	if v.Prices.Status != stockdash.StatusIdle {
		t.Errorf("prices status = %v, want idle", v.Prices.Status)
	}
}

func TestSelectAndView(t *testing.T) {
	b := newBridge(t)

	rec := b.do(t, http.MethodPut, "/api/selection/aapl")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("PUT status = %d, want 202", rec.Code)
	}
	if v := decodeView(t, rec); v.Selection != "AAPL" || v.Token != 1 {
		t.Errorf("PUT view selection=%q token=%d, want AAPL 1", v.Selection, v.Token)
	}

	b.ctrl.Wait()
	v := decodeView(t, b.do(t, http.MethodGet, "/api/view"))
	if v.Loading {
		t.Error("view still loading after all fetches settled")
	}
	if v.Prices.Status != stockdash.StatusLoaded || v.Prices.Last != "$160.50" || len(v.Prices.Points) != 2 {
		t.Errorf("prices = %+v", v.Prices)
	}
	if v.News.Status != stockdash.StatusFailed || v.News.Reason != "network error" {
		t.Errorf("news = %+v, want failed with network error", v.News)
	}
	p := v.Prediction
	if p.Status != stockdash.StatusLoaded || p.PredictedPrice != "$165.00" || p.TrendLabel != "▲ UP" {
		t.Errorf("prediction = %+v", p)
	}
	if p.Confidence != "N/A" || p.Sentiment != "N/A" || p.Generated != "N/A" {
		t.Errorf("missing prediction fields = %q %q %q, want N/A", p.Confidence, p.Sentiment, p.Generated)
	}
}

func TestSelectInvalidTicker(t *testing.T) {
	b := newBridge(t)
	rec := b.do(t, http.MethodPut, "/api/selection/$$$")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if b.ctrl.Token() != 0 {
		t.Errorf("token = %d, want 0", b.ctrl.Token())
	}
}

func TestRefresh(t *testing.T) {
	b := newBridge(t)
	if rec := b.do(t, http.MethodPost, "/api/refresh"); rec.Code != http.StatusConflict {
		t.Errorf("refresh without selection = %d, want 409", rec.Code)
	}

	b.do(t, http.MethodPut, "/api/selection/MSFT")
	b.ctrl.Wait()
	rec := b.do(t, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("refresh = %d, want 202", rec.Code)
	}
	if v := decodeView(t, rec); v.Token != 2 || v.Selection != "MSFT" {
		t.Errorf("token=%d selection=%q, want 2 MSFT", v.Token, v.Selection)
	}
}

func TestTickers(t *testing.T) {
	b := newBridge(t)
	b.do(t, http.MethodPut, "/api/selection/msft")
	rec := b.do(t, http.MethodGet, "/api/tickers")
	var got TickersJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Popular) != 2 || got.Selection != "MSFT" {
		t.Errorf("tickers = %+v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	b := newBridge(t)
	rec := b.do(t, http.MethodOptions, "/api/view")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestClosedController(t *testing.T) {
	b := newBridge(t)
	b.ctrl.Close()
	if rec := b.do(t, http.MethodPut, "/api/selection/AAPL"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestWebSocketStream(t *testing.T) {
	b := newBridge(t)
	ts := httptest.NewServer(b.srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first ViewJSON
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if first.Token != 0 {
		t.Errorf("snapshot token = %d, want 0", first.Token)
	}

	if err := b.ctrl.SetSelection("NVDA"); err != nil {
		t.Fatal(err)
	}
	for {
		var v ViewJSON
		if err := conn.ReadJSON(&v); err != nil {
			t.Fatalf("reading update: %v", err)
		}
		if v.Token == 1 && !v.Loading {
			if v.Selection != "NVDA" || v.Prediction.Status != stockdash.StatusLoaded {
				t.Errorf("final view = %+v", v)
			}
			break
		}
	}
}

func TestWebSocketCloseFrame(t *testing.T) {
	b := newBridge(t)
	ts := httptest.NewServer(b.srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first ViewJSON
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}

	b.srv.Close()
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("read error = %v, want going-away close", err)
		}
		break
	}
}
