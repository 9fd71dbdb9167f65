package chat

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LiveNotifier is the low-latency side channel. It is notification-only:
// nothing sent through it is persisted, and nothing received through it is
// authoritative. The REST store is.
type LiveNotifier interface {
	Emit(name string, payload interface{}) error
	Close()
}

var ErrTransportClosed = errors.New("chat: transport closed")

// Transport maintains one websocket connection to the backend's chat
// socket, redialing on unexpected disconnects. Missed traffic during a gap
// is not replayed; the coordinator recovers by re-fetching over REST.
type Transport struct {
	url    string
	logger *zap.Logger

	onConnect func()
	onEvent   func(Event)

	redialWait time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

func NewTransport(socketURL string, logger *zap.Logger) *Transport {
	return &Transport{
		url:        socketURL,
		logger:     logger,
		redialWait: 3 * time.Second,
		done:       make(chan struct{}),
	}
}

// OnConnect registers the handler run after every successful dial (initial
// and redial) — the coordinator re-runs its authenticate handshake there.
func (t *Transport) OnConnect(fn func()) { t.onConnect = fn }

func (t *Transport) OnEvent(fn func(Event)) { t.onEvent = fn }

// Run dials and pumps inbound events until Close. It returns only when the
// transport is closed for good.
func (t *Transport) Run() {
	for {
		select {
		case <-t.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(t.url, nil)
		if err != nil {
			t.logger.Warn("chat socket dial failed", zap.Error(err))
			select {
			case <-t.done:
				return
			case <-time.After(t.redialWait):
				continue
			}
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		t.mu.Unlock()

		t.logger.Info("chat socket connected")
		if t.onConnect != nil {
			t.onConnect()
		}

		t.readLoop(conn)

		t.mu.Lock()
		t.conn = nil
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return
		}
		t.logger.Info("chat socket lost, redialing")
	}
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			conn.Close()
			return
		}
		if t.onEvent != nil {
			t.onEvent(ev)
		}
	}
}

func (t *Transport) Emit(name string, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrTransportClosed
	}
	return t.conn.WriteJSON(NewEvent(name, payload))
}

func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
	if t.conn != nil {
		t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		t.conn.Close()
	}
}

// decode is a small helper for inbound payloads.
func decode(data json.RawMessage, out interface{}) bool {
	if data == nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}
