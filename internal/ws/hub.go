package ws

import "sync"

// Hub is the presence registry: the process-lifetime map from user id to the
// user's one live connection. It is the only shared mutable structure in the
// server, so every access goes through the mutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // userID -> client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register binds a user id to a connection. The last registration wins: an
// existing mapping for the same user is silently replaced, without notifying
// the superseded connection.
func (h *Hub) Register(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = c
}

// Resolve looks up the live connection for a user. It never blocks on I/O.
func (h *Hub) Resolve(userID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

// Unregister removes whatever entry maps to this exact client. If the user
// already re-registered with a newer connection the map holds a different
// client and nothing is removed; a stale disconnect must not evict the
// current mapping.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, cur := range h.clients {
		if cur == c {
			delete(h.clients, userID)
			return
		}
	}
}

// Count reports how many users are currently connected.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
