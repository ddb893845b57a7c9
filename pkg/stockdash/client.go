// Package stockdash is a Go client for the stockdash bridge server.
package stockdash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Client talks to a running stockdash-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the bridge at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the bridge.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stockdash: %d %s", e.StatusCode, e.Message)
}

// View returns the current dashboard snapshot.
func (c *Client) View(ctx context.Context) (*ViewJSON, error) {
	var v ViewJSON
	if err := c.do(ctx, http.MethodGet, "/api/view", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Select switches the dashboard to ticker and returns the snapshot taken
// right after the new query cycle started.
func (c *Client) Select(ctx context.Context, ticker string) (*ViewJSON, error) {
	var v ViewJSON
	if err := c.do(ctx, http.MethodPut, "/api/selection/"+url.PathEscape(ticker), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Refresh re-queries the current ticker.
func (c *Client) Refresh(ctx context.Context) (*ViewJSON, error) {
	var v ViewJSON
	if err := c.do(ctx, http.MethodPost, "/api/refresh", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Tickers returns the shortcut tickers and the current selection.
func (c *Client) Tickers(ctx context.Context) (*TickersJSON, error) {
	var t TickersJSON
	if err := c.do(ctx, http.MethodGet, "/api/tickers", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Watch streams view states to fn until ctx is done, the server closes the
// stream, or fn returns an error. The first state is the current snapshot.
func (c *Client) Watch(ctx context.Context, fn func(ViewJSON) error) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", u, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var v ViewJSON
		if err := conn.ReadJSON(&v); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading view: %w", err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
