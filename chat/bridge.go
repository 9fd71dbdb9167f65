package chat

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	bridgeWriteWait = 10 * time.Second
	bridgePingEvery = 30 * time.Second
)

// ServeWidget upgrades the page widget's socket and relays the
// coordinator's inbound events to it. The widget never writes through this
// socket; sends go through the regular form/JSON endpoints so the REST path
// stays authoritative.
func ServeWidget(w http.ResponseWriter, r *http.Request, coord *Coordinator, logger *zap.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := coord.Subscribe()
	defer cancel()

	// drain the widget side so pongs and close frames are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(bridgePingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(bridgeWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(bridgeWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("widget relay write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(bridgeWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
