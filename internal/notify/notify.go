// Package notify delivers one-way events from the session host to whatever
// UI surface is currently attached. Delivery is best effort: with no surface
// attached events are dropped.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Channel names the kind of an outbound event.
type Channel string

const (
	ChannelStatus    Channel = "update-status"
	ChannelTurnSaved Channel = "save-conversation-turn"
	ChannelResponse  Channel = "update-response"
)

// Event is a single outbound notification.
type Event struct {
	Channel Channel `json:"channel"`
	Payload any     `json:"payload"`
}

// Sink receives events. Notify never reports failure to the caller.
type Sink interface {
	Notify(event Event)
}

// Surface is a UI endpoint able to receive events, e.g. a websocket connection.
type Surface interface {
	Send(event Event) error
}

// Func adapts a plain function to a Sink.
type Func func(Event)

// Notify calls f(event).
func (f Func) Notify(event Event) { f(event) }

// Discard drops every event.
var Discard Sink = Func(func(Event) {})

// Forward notifies sink of each event in order.
func Forward(sink Sink, events []Event) {
	for _, event := range events {
		sink.Notify(event)
	}
}

// Hub routes events to at most one attached surface.
type Hub struct {
	mu      sync.RWMutex
	surface Surface
	logger  *zap.Logger
}

// NewHub creates a hub with no surface attached.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger}
}

// Attach makes s the delivery target, replacing any previous surface.
func (h *Hub) Attach(s Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surface = s
}

// Detach clears the target if it is still s.
func (h *Hub) Detach(s Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.surface == s {
		h.surface = nil
	}
}

// Attached reports whether a surface is currently attached.
func (h *Hub) Attached() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.surface != nil
}

// Notify sends event to the attached surface, if any.
func (h *Hub) Notify(event Event) {
	h.mu.RLock()
	s := h.surface
	h.mu.RUnlock()

	if s == nil {
		h.logger.Debug("no surface attached, dropping event", zap.String("channel", string(event.Channel)))
		return
	}
	if err := s.Send(event); err != nil {
		h.logger.Warn("failed to deliver event", zap.String("channel", string(event.Channel)), zap.Error(err))
	}
}
