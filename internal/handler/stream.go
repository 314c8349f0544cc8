package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/itchan-dev/aurum/shared/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsBuffer     = 32
)

// Default CheckOrigin only accepts same-host origins.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Stream pushes every store mutation of the caller's session as a JSON event
// until the client goes away. Incoming messages are ignored.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	// subscribe before the handshake completes so no event after it is missed
	events, unsubscribe := s.Store.Subscribe(wsBuffer)
	defer unsubscribe()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client
		logger.Log.Debug("websocket upgrade failed", "session_id", s.Id, "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	logger.Log.Debug("stream opened", "session_id", s.Id)
	defer logger.Log.Debug("stream closed", "session_id", s.Id)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
