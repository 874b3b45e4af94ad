package server

import (
	"context"
	"encoding/json"
	"sync"

	"pollstream/internal/events"
	"pollstream/pkg/logger"
)

// Hub maintains the set of live subscriber connections and fans out poll
// events to all of them. Membership is guarded by the mutex; delivery uses
// each client's buffered send channel so one slow or dead subscriber cannot
// block the rest. A subscriber whose buffer is full is evicted on the spot.
//
// A client's send channel is closed in exactly one place: handleUnregister,
// which runs only after the client's readPump has exited. Eviction and
// shutdown close the connection instead, so a live pump can never send on a
// closed channel.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	logger     *logger.Logger
	mu         sync.RWMutex
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewHub(l *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
		logger:     l,
		stopChan:   make(chan struct{}),
	}
}

// Run processes registration and broadcast traffic until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case data := <-h.broadcast:
			h.handleBroadcast(data)

		case <-h.stopChan:
			h.closeAll()
			return
		}
	}
}

// Publish implements events.Publisher for single-instance deployments where
// the hub receives events directly instead of through the redis relay.
func (h *Hub) Publish(_ context.Context, env events.Envelope) error {
	h.Broadcast(env)
	return nil
}

// Broadcast serializes the envelope once and queues it for every connected
// subscriber. Called only after the triggering transaction has committed.
func (h *Hub) Broadcast(env events.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("broadcast marshal failed: %s", err)
		}
		return
	}
	h.BroadcastRaw(data)
}

// BroadcastRaw queues a pre-serialized envelope. Implements events.Sink so
// the redis relay can feed remote events into the local set.
func (h *Hub) BroadcastRaw(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.stopChan:
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	if h.logger != nil {
		h.logger.Infof("subscriber connected: user=%s total=%d", client.userID, len(h.clients))
	}
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		client.closeConn()
		if h.logger != nil {
			h.logger.Infof("subscriber disconnected: user=%s total=%d", client.userID, len(h.clients))
		}
	}
}

func (h *Hub) handleBroadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Buffer full: the subscriber stopped draining. Drop it so the
			// rest of the set is not held up. Closing the connection makes
			// the readPump exit and funnel through unregister, which owns
			// the send channel close.
			if h.logger != nil {
				h.logger.Warnf("evicting slow subscriber: user=%s", client.userID)
			}
			delete(h.clients, client)
			client.closeConn()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeConn()
	}
	h.clients = make(map[*Client]bool)
}

// ClientCount reports current membership.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the hub down and closes every connection. Safe to call more
// than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}
