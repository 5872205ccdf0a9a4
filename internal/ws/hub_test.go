package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type inbound struct {
	session string
	data    string
}

func startHub(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()
	h := NewHub(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var v map[string]any
	if err := conn.ReadJSON(&v); err != nil {
		t.Fatalf("read: %v", err)
	}
	return v
}

func TestHubGreetsAndBroadcasts(t *testing.T) {
	connected := make(chan string, 1)
	h, url := startHub(t, Options{
		OnConnect: func(s *Session) {
			connected <- s.ID
			s.SendJSON(map[string]any{"type": "hello", "session": s.ID})
		},
	})

	conn := dial(t, url)
	var id string
	select {
	case id = <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("OnConnect never ran")
	}
	if len(id) != 36 {
		t.Errorf("session id %q is not a uuid", id)
	}

	hello := readJSON(t, conn)
	if hello["type"] != "hello" || hello["session"] != id {
		t.Fatalf("greeting = %v", hello)
	}
	if h.Clients() != 1 {
		t.Errorf("Clients() = %d, want 1", h.Clients())
	}

	h.BroadcastJSON(map[string]any{"type": "frame", "seq": 7})
	frame := readJSON(t, conn)
	if frame["type"] != "frame" || frame["seq"] != float64(7) {
		t.Fatalf("broadcast = %v", frame)
	}
}

func TestHubDeliversInboundMessages(t *testing.T) {
	got := make(chan inbound, 4)
	_, url := startHub(t, Options{
		OnMessage: func(s *Session, data []byte) { got <- inbound{s.ID, string(data)} },
	})

	conn := dial(t, url)
	msg, _ := json.Marshal(map[string]any{"type": "click", "x": 10, "y": 20})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatal(err)
	}

	select {
	case in := <-got:
		if in.data != string(msg) || in.session == "" {
			t.Fatalf("inbound = %+v", in)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message never delivered")
	}
}

func TestHubCountsDisconnects(t *testing.T) {
	counts := make(chan int, 4)
	h, url := startHub(t, Options{OnClients: func(n int) { counts <- n }})

	conn := dial(t, url)
	if n := <-counts; n != 1 {
		t.Fatalf("count after connect = %d", n)
	}
	conn.Close()

	select {
	case n := <-counts:
		if n != 0 || h.Clients() != 0 {
			t.Fatalf("count after disconnect = %d (Clients() = %d)", n, h.Clients())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("disconnect never observed")
	}
}

func TestSessionAllow(t *testing.T) {
	sessions := make(chan *Session, 1)
	_, url := startHub(t, Options{
		Rate:      0.001,
		Burst:     2,
		OnConnect: func(s *Session) { sessions <- s },
	})
	dial(t, url)

	s := <-sessions
	if !s.Allow() || !s.Allow() {
		t.Fatal("burst not honoured")
	}
	if s.Allow() {
		t.Fatal("limiter allowed past its burst")
	}

	unlimited := &Session{}
	for i := 0; i < 100; i++ {
		if !unlimited.Allow() {
			t.Fatal("session without limiter refused a message")
		}
	}
}
