package realtime

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sora2-studio/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	// EventVideoCreated is sent to every client when a video is created.
	EventVideoCreated = "video_created"
)

// Publisher publishes feed events to Redis for cross-instance broadcast.
type Publisher interface {
	PublishEvent(event string, payload []byte) error
}

// Subscriber subscribes to the feed channel and invokes handler for incoming events.
type Subscriber interface {
	Subscribe(handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub holds the connected feed clients and broadcasts video events to them.
// With Redis configured, events go through Redis so every instance delivers them.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     Publisher
	sub     Subscriber

	// subMu serializes Subscribe/cancel so the Redis round trip never holds mu.
	subMu      sync.Mutex
	cancel     func()
	subscribed atomic.Bool
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for local-only delivery.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Register adds a client and makes sure the Redis subscription is up.
// A failed subscription is retried on the next Register.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("feed client joined", zap.String("client_id", c.ID), zap.Int("clients", count))
	h.syncSubscription()
}

// Unregister removes a client and closes its send channel. Cancels the Redis subscription
// when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.send)
	}
	h.mu.Unlock()
	h.logger.Debug("feed client left", zap.String("client_id", c.ID))
	h.syncSubscription()
}

// syncSubscription subscribes while clients are connected and cancels once none are.
func (h *Hub) syncSubscription() {
	if h.sub == nil {
		return
	}
	h.subMu.Lock()
	defer h.subMu.Unlock()

	active := h.ClientCount() > 0
	switch {
	case active && h.cancel == nil:
		cancel, err := h.sub.Subscribe(func(event string, payload []byte) {
			h.Broadcast(event, json.RawMessage(payload))
		})
		if err != nil {
			h.logger.Warn("feed subscribe failed, delivering locally", zap.Error(err))
			return
		}
		h.cancel = cancel
		h.subscribed.Store(true)
	case !active && h.cancel != nil:
		h.subscribed.Store(false)
		h.cancel()
		h.cancel = nil
	}
}

// Broadcast sends a message to all local clients. Slow clients with a full buffer miss it.
func (h *Hub) Broadcast(event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal feed payload failed", zap.Error(err), zap.String("event", event))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Publish delivers an event to every instance. With Redis it publishes, and the subscriber
// callback broadcasts once (including here). Local clients are served directly when there is
// no Redis, the publish fails, or this instance is not subscribed.
func (h *Hub) Publish(event string, payload interface{}) {
	if h.pub == nil {
		h.Broadcast(event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal feed payload failed", zap.Error(err), zap.String("event", event))
		return
	}
	if err := h.pub.PublishEvent(event, data); err != nil {
		h.logger.Warn("publish feed event failed, broadcasting locally", zap.Error(err))
		h.Broadcast(event, json.RawMessage(data))
		return
	}
	if !h.subscribed.Load() {
		h.Broadcast(event, json.RawMessage(data))
	}
}

// VideoCreated implements videos.Notifier.
func (h *Hub) VideoCreated(v models.Video) {
	h.Publish(EventVideoCreated, v)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
