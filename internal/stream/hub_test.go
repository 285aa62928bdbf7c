package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fastscape/internal/sims/landscape"

	"github.com/gorilla/websocket"
)

func TestHubDeliversFrames(t *testing.T) {
	cfg := landscape.DefaultConfig()
	cfg.XSize, cfg.YSize = 6, 4
	m, err := landscape.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	hub.Publish(FrameOf(m))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first Frame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Step != 0 || first.NX != 6 || first.NY != 4 || len(first.Elevation) != 24 {
		t.Fatalf("unexpected initial frame %+v", first)
	}

	if err := m.Step(); err != nil {
		t.Fatal(err)
	}
	hub.Publish(FrameOf(m))
	var next Frame
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatal(err)
	}
	if next.Step != 1 || next.Time != cfg.TimeStep {
		t.Fatalf("unexpected frame %+v", next)
	}
	if hub.Clients() != 1 {
		t.Fatalf("hub has %d clients", hub.Clients())
	}
}
