package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPrefetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := NewPrefetcher(srv.URL, nil, zap.NewNop())
	raw := p.Prefetch(context.Background(), "/anything", PrefetchOptions{})
	if string(raw) != `{"ok":true}` {
		t.Fatalf("got %q", raw)
	}
}

func TestPrefetchNilOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/500":
			w.WriteHeader(http.StatusInternalServerError)
		case "/garbage":
			w.Write([]byte("<html>not json</html>"))
		}
	}))
	defer srv.Close()

	p := NewPrefetcher(srv.URL, nil, zap.NewNop())

	if raw := p.Prefetch(context.Background(), "/500", PrefetchOptions{}); raw != nil {
		t.Fatalf("non-2xx should yield nil, got %q", raw)
	}
	if raw := p.Prefetch(context.Background(), "/garbage", PrefetchOptions{}); raw != nil {
		t.Fatalf("invalid JSON should yield nil, got %q", raw)
	}

	// unreachable host
	dead := NewPrefetcher("http://127.0.0.1:1", nil, zap.NewNop())
	if raw := dead.Prefetch(context.Background(), "/x", PrefetchOptions{Timeout: 200 * time.Millisecond}); raw != nil {
		t.Fatalf("connection failure should yield nil, got %q", raw)
	}
}

func TestPrefetchTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewPrefetcher(srv.URL, nil, zap.NewNop())

	start := time.Now()
	raw := p.Prefetch(context.Background(), "/slow", PrefetchOptions{Timeout: 50 * time.Millisecond})
	elapsed := time.Since(start)

	if raw != nil {
		t.Fatalf("timed-out fetch should yield nil, got %q", raw)
	}
	if elapsed > 300*time.Millisecond {
		t.Fatalf("Prefetch blocked past its timeout: %v", elapsed)
	}
}

func TestPrefetchAllIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fast":
			w.Write([]byte(`{"page":"fast"}`))
		case "/slow":
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte(`{"page":"slow"}`))
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	p := NewPrefetcher(srv.URL, nil, zap.NewNop())

	start := time.Now()
	results := p.PrefetchAll(context.Background(),
		[]string{"/fast", "/slow", "/broken"},
		PrefetchOptions{Timeout: 100 * time.Millisecond})
	elapsed := time.Since(start)

	if string(results[0]) != `{"page":"fast"}` {
		t.Fatalf("fast slot: got %q", results[0])
	}
	if results[1] != nil {
		t.Fatalf("slow slot should be nil, got %q", results[1])
	}
	if results[2] != nil {
		t.Fatalf("broken slot should be nil, got %q", results[2])
	}
	// concurrent: the whole batch is bounded by the single timeout,
	// not the sum of the three calls
	if elapsed > 400*time.Millisecond {
		t.Fatalf("PrefetchAll ran sequentially: %v", elapsed)
	}
}

func TestPrefetchInto(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if !PrefetchInto([]byte(`{"name":"x"}`), &out) || out.Name != "x" {
		t.Fatal("valid payload should decode")
	}
	if PrefetchInto(nil, &out) {
		t.Fatal("nil payload should report no data")
	}
}
