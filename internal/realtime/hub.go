package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	// EventRSVPUpdated is sent when a guest responds.
	EventRSVPUpdated = "rsvp_updated"
	// EventConnected is the first message on every socket.
	EventConnected = "connected"
)

// Publisher publishes a message to every instance (including this one).
type Publisher interface {
	PublishEventMessage(ctx context.Context, eventID uuid.UUID, name string, payload []byte) error
}

// Subscriber subscribes to an event's channel and invokes handler for incoming messages.
type Subscriber interface {
	SubscribeEvent(eventID uuid.UUID, handler func(name string, payload []byte)) (cancel func(), err error)
}

// Hub maintains event_id -> set of connections and fans out live RSVP updates.
// With Redis configured, messages go through pub/sub so every instance's clients see them once.
type Hub struct {
	rooms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func()
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for a single-instance hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to an event room. Starts the Redis subscription for the event
// when none is active, so a failed subscribe is retried by the next client to join.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.EventID] == nil {
		h.rooms[c.EventID] = make(map[string]*Client)
	}
	if h.sub != nil && h.subs[c.EventID] == nil {
		eventID := c.EventID
		cancel, err := h.sub.SubscribeEvent(eventID, func(name string, payload []byte) {
			h.Broadcast(eventID, name, json.RawMessage(payload))
		})
		if err != nil {
			h.logger.Warn("subscribe event channel failed", zap.Error(err), zap.String("event_id", eventID.String()))
		} else {
			h.subs[eventID] = cancel
		}
	}
	h.rooms[c.EventID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined event feed", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Unregister removes a client. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.EventID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.EventID)
			if cancel, ok := h.subs[c.EventID]; ok {
				cancel()
				delete(h.subs, c.EventID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left event feed", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Broadcast sends a message to this instance's clients of an event.
func (h *Hub) Broadcast(eventID uuid.UUID, name string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal broadcast payload", zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[eventID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish delivers a message to all instances. Without Redis it is a local broadcast.
func (h *Hub) Publish(ctx context.Context, eventID uuid.UUID, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if h.pub != nil {
		return h.pub.PublishEventMessage(ctx, eventID, name, data)
	}
	h.Broadcast(eventID, name, json.RawMessage(data))
	return nil
}

// RSVPUpdated announces a guest response on the event's live feed.
func (h *Hub) RSVPUpdated(ctx context.Context, inv *models.Invite) error {
	return h.Publish(ctx, inv.EventID, EventRSVPUpdated, inv)
}

// ViewerCount returns the number of connected clients on this instance for an event.
func (h *Hub) ViewerCount(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}
