// Package realtime pushes "posts changed" signals from the API to connected clients over WebSocket.
package realtime

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/astravon/portal/core"
)

const peerBuffer = 8

// Frame is the only message exchanged on the channel; events carry no payload.
type Frame struct {
	Type string `json:"type"`
}

type peer struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub broadcasts events to every connected peer. It implements post.Notifier and http.Handler.
type Hub struct {
	server websocket.Server
	logger core.Logger

	mu     sync.Mutex
	peers  map[*peer]struct{}
	closed bool
}

func NewHub(logger core.Logger) *Hub {
	h := &Hub{
		logger: logger,
		peers:  make(map[*peer]struct{}),
	}
	h.server = websocket.Server{
		// clients are not browsers; any origin is accepted
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   h.serve,
	}
	return h
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.server.ServeHTTP(w, r)
}

func (h *Hub) serve(conn *websocket.Conn) {
	p := &peer{conn: conn, send: make(chan Frame, peerBuffer)}
	if !h.add(p) {
		_ = conn.Close()
		return
	}
	defer h.remove(p)

	go h.write(p)

	// peers never send anything meaningful; reading detects the disconnect
	var discard [64]byte
	for {
		if _, err := conn.Read(discard[:]); err != nil {
			if err != io.EOF {
				h.logger.Debug(fmt.Sprintf("realtime: peer read: %v", err))
			}
			return
		}
	}
}

func (h *Hub) write(p *peer) {
	for frame := range p.send {
		if err := websocket.JSON.Send(p.conn, frame); err != nil {
			h.logger.Debug(fmt.Sprintf("realtime: peer write: %v", err))
			_ = p.conn.Close()
			// drain until removed
			for range p.send {
			}
			return
		}
	}
}

func (h *Hub) add(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	return true
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; ok {
		delete(h.peers, p)
		close(p.send)
		_ = p.conn.Close()
	}
}

// Publish sends event to every peer. A peer with a full buffer already has a pending
// signal, so the event is dropped for it.
func (h *Hub) Publish(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		select {
		case p.send <- Frame{Type: event}:
		default:
		}
	}
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close disconnects every peer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.peers {
		delete(h.peers, p)
		close(p.send)
		_ = p.conn.Close()
	}
}
