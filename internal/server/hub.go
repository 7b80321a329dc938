// internal/server/hub.go
package server

import (
	"sync"

	"github.com/coder/quartz"
	"github.com/jason-s-yu/uno/internal/protocol"
)

// Hub is the registry of connected clients. Client ids are allocated
// monotonically from 1 and double as player ids.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client
	nextID  int64
	clock   quartz.Clock
}

// NewHub creates an empty hub. A nil clock uses the real one.
func NewHub(clock quartz.Clock) *Hub {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Hub{clients: make(map[int64]*Client), clock: clock}
}

// Clock is the hub's time source.
func (h *Hub) Clock() quartz.Clock { return h.clock }

// Register allocates an id for a new connection.
func (h *Hub) Register(remote string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	c := newClient(h.nextID, remote, h.clock)
	h.clients[c.ID] = c
	return c
}

// Unregister forgets a client. It does not close it.
func (h *Hub) Unregister(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Get returns the live client with id.
func (h *Hub) Get(id int64) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Len is the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo queues msg for every listed client that is still connected.
func (h *Hub) SendTo(ids []int64, msg protocol.Message) {
	for _, id := range ids {
		if c, ok := h.Get(id); ok {
			_ = c.Send(msg)
		}
	}
}

// CloseAll closes every registered client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.Close()
	}
}
