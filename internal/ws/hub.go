// Package ws fans availability changes out to connected browsers. Clients
// subscribe once and receive an event whenever any station's available-slot
// count changes; there is no inbound protocol.
package ws

import (
	"sync"

	"go.uber.org/zap"
)

// AvailabilityEvent is pushed to every subscriber after a recount.
type AvailabilityEvent struct {
	StationID      int64 `json:"stationId"`
	AvailableSlots int   `json:"availableSlots"`
	TotalSlots     int   `json:"totalSlots"`
}

// conn is the minimal surface the hub needs from a websocket connection.
type conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub tracks subscribers and broadcasts events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// add registers a subscriber.
func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// remove drops a subscriber and closes its queue.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// NotifyAvailability queues the event for every subscriber. Slow clients are
// dropped rather than allowed to block the booking path.
func (h *Hub) NotifyAvailability(stationID int64, availableSlots, totalSlots int) {
	event := AvailabilityEvent{
		StationID:      stationID,
		AvailableSlots: availableSlots,
		TotalSlots:     totalSlots,
	}

	h.mu.RLock()
	stalled := make([]*Client, 0)
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn("dropping stalled availability subscriber")
		h.remove(client)
		_ = client.conn.Close()
	}
}

// ClientCount returns the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
