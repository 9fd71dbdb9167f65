package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestTransportConnectAndPump(t *testing.T) {
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	defer srv.Close()

	connected := make(chan struct{}, 1)
	inbound := make(chan Event, 1)

	tr := NewTransport(wsURL(srv), zap.NewNop())
	tr.OnConnect(func() { connected <- struct{}{} })
	tr.OnEvent(func(ev Event) { inbound <- ev })

	runDone := make(chan struct{})
	go func() {
		tr.Run()
		close(runDone)
	}()
	defer tr.Close()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("transport never connected")
	}

	var serverConn *websocket.Conn
	select {
	case serverConn = <-serverConns:
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the connection")
	}

	// server -> transport
	if err := serverConn.WriteJSON(NewEvent(EventAuthenticated, nil)); err != nil {
		t.Fatalf("server write: %v", err)
	}
	select {
	case ev := <-inbound:
		if ev.Name != EventAuthenticated {
			t.Fatalf("event name = %q", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never pumped through")
	}

	// transport -> server
	if err := tr.Emit(EventTyping, typingPayload{ConversationID: 7, UserID: 1}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	var got Event
	serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := serverConn.ReadJSON(&got); err != nil {
		t.Fatalf("server read: %v", err)
	}
	if got.Name != EventTyping {
		t.Fatalf("emitted event name = %q", got.Name)
	}

	// Close ends Run for good, no redial
	tr.Close()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestTransportEmitWhileDisconnected(t *testing.T) {
	tr := NewTransport("ws://127.0.0.1:1/chat", zap.NewNop())
	if err := tr.Emit(EventTyping, nil); err != ErrTransportClosed {
		t.Fatalf("want ErrTransportClosed, got %v", err)
	}
	tr.Close()
}

func TestTransportReconnects(t *testing.T) {
	dials := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials <- struct{}{}
		// drop the connection immediately to force a redial
		conn.Close()
	}))
	defer srv.Close()

	tr := NewTransport(wsURL(srv), zap.NewNop())
	tr.redialWait = 20 * time.Millisecond
	go tr.Run()
	defer tr.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-dials:
		case <-time.After(3 * time.Second):
			t.Fatalf("dial %d never happened", i+1)
		}
	}
}
