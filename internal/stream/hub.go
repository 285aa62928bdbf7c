// Package stream broadcasts elevation frames to websocket clients while a
// run is in progress.
package stream

import (
	"log"
	"net/http"
	"sync"
	"time"

	"fastscape/internal/sims/landscape"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Frame is the JSON message sent after each step.
type Frame struct {
	Step      int       `json:"step"`
	Time      float64   `json:"time"`
	NX        int       `json:"nx"`
	NY        int       `json:"ny"`
	Elevation []float64 `json:"elevation"`
}

// FrameOf captures the current state of m.
func FrameOf(m *landscape.Model) Frame {
	g := m.Grid()
	z := make([]float64, g.Len())
	copy(z, m.Topography().Elevation())
	return Frame{Step: m.StepCount(), Time: m.Time(), NX: g.NX, NY: g.NY, Elevation: z}
}

// Hub is an http.Handler that upgrades requests to websockets and fans
// published frames out to every connected client. New clients receive the
// latest frame immediately. Clients that fail a write are dropped.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    *Frame
}

// NewHub returns an empty hub accepting any origin.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP handles one websocket client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("stream: upgrade:", err)
		return
	}
	defer conn.Close()

	lock := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = lock
	last := h.last
	h.mu.Unlock()
	defer h.remove(conn)

	if last != nil && send(conn, lock, last) != nil {
		return
	}
	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends f to every client and keeps it for clients that connect
// later.
func (h *Hub) Publish(f Frame) {
	h.mu.Lock()
	h.last = &f
	h.mu.Unlock()

	h.mu.RLock()
	var failed []*websocket.Conn
	for conn, lock := range h.clients {
		if err := send(conn, lock, &f); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		h.remove(conn)
		conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func send(conn *websocket.Conn, lock *sync.Mutex, f *Frame) error {
	lock.Lock()
	defer lock.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}
