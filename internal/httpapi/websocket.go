package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval = 45 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS streams the current view and then every transition. Slow clients
// skip intermediate states but always receive the latest one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	id, updates := s.views.Subscribe()
	defer s.views.Unsubscribe(id)
	s.log.Debug("websocket connected", "remote", r.RemoteAddr, "sub", id)

	// Inbound messages are ignored; reading is needed to see close frames.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case v, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.log.Debug("websocket write deadline", "error", err)
				return
			}
			if err := conn.WriteJSON(toViewJSON(v, s.now())); err != nil {
				s.log.Debug("websocket write", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.log.Debug("websocket ping", "error", err)
				return
			}
		case <-gone:
			s.log.Debug("websocket disconnected", "sub", id)
			return
		case <-s.closing:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
				s.log.Debug("websocket close frame", "error", err)
			}
			return
		}
	}
}
