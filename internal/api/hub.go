package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/streax-app/streax/internal/domain"
)

// ─── Live Day-Result Feed ───────────────────────────────────────────────────
// Every processed day is pushed to connected clients as a Server-Sent
// Event, so dashboards can animate XP and streak changes without polling.

// ResultHub manages SSE subscribers for the live day-result feed.
type ResultHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewResultHub creates a new result broadcast hub.
func NewResultHub() *ResultHub {
	return &ResultHub{
		clients: make(map[chan []byte]struct{}),
	}
}

// Broadcast sends a day result to all connected clients.
// Implements engine.Broadcaster.
func (h *ResultHub) Broadcast(result domain.DayResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Client too slow — drop message
		}
	}
}

// Subscribe registers a new client. Returns the channel and an unsubscribe func.
func (h *ResultHub) Subscribe() (chan []byte, func()) {
	ch := make(chan []byte, 32)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (h *ResultHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleSSE serves the live day-result feed via Server-Sent Events.
// GET /api/events/live
func (h *ResultHub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch, unsub := h.Subscribe()
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
