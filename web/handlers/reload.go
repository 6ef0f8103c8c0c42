package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"devserve/log"
	"devserve/web/types"
)

const pingInterval = 30 * time.Second

// ReloadHandler streams change events from monitor to browsers over a WebSocket.
// responseHeader is added to the 101 handshake response, which bypasses the
// response writer.
func ReloadHandler(monitor types.MonitorInterface, responseHeader http.Header) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// The server already sends Access-Control-Allow-Origin: * on every
			// response; pages opened from other local origins may reload too.
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, responseHeader)
		if err != nil {
			log.FileOnlyErrorLog.Printf("reload: upgrade failed for %s: %v", r.RemoteAddr, err)
			return
		}
		defer conn.Close()
		log.FileOnlyInfoLog.Printf("reload: client connected from %s", r.RemoteAddr)

		events := monitor.Subscribe()
		defer monitor.Unsubscribe(events)

		// Drain client frames so close and pong control messages are handled.
		// Only this goroutine reads and only the loop below writes.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.FileOnlyWarningLog.Printf("reload: read error for %s: %v", r.RemoteAddr, err)
					}
					return
				}
			}
		}()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					log.FileOnlyErrorLog.Printf("reload: write failed for %s: %v", r.RemoteAddr, err)
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-monitor.Done():
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			case <-closed:
				log.FileOnlyInfoLog.Printf("reload: client %s disconnected", r.RemoteAddr)
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
