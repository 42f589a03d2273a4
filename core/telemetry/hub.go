// Package telemetry publishes guard interceptions and field resolutions on a
// typed event bus so that callers can observe them without coupling to the
// guard or record packages.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-fieldguard/core/guard"
	"github.com/asaidimu/go-fieldguard/core/record"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType names an event published on the hub.
type EventType string

const (
	GuardIntercepted EventType = "guard:intercepted"
	FieldResolved    EventType = "field:resolved"
	FieldFailed      EventType = "field:failed"
)

// Event is the payload of every hub event. Timestamp is in Unix milliseconds;
// Source is the handler name for guard events and the record ref for field
// events.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Source    string         `json:"source"`
	Field     string         `json:"field,omitempty"`
	Message   string         `json:"message,omitempty"`
	Error     *string        `json:"error,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Callback receives hub events.
type Callback func(ctx context.Context, event Event) error

// SubscriptionInfo describes an active subscription.
type SubscriptionInfo struct {
	ID          string
	Event       EventType
	Label       string
	Unsubscribe func()
}

// Hub fans events out to subscribers.
type Hub struct {
	bus           *events.TypedEventBus[Event]
	logger        *zap.Logger
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewHub creates a Hub with its own event bus.
func NewHub(logger *zap.Logger) (*Hub, error) {
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		bus:           bus,
		logger:        logger,
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

// Emit publishes event, stamping it with the current time when unset.
func (h *Hub) Emit(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	h.logger.Debug("Emitting event", zap.String("type", string(event.Type)), zap.String("source", event.Source))
	h.bus.Emit(string(event.Type), event)
}

// Subscribe registers callback for events of the given type and returns the
// subscription id.
func (h *Hub) Subscribe(event EventType, label string, callback Callback) string {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	unsubscribe := h.bus.Subscribe(string(event), func(ctx context.Context, e Event) error {
		return callback(ctx, e)
	})
	id := uuid.New().String()
	h.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       event,
		Label:       label,
		Unsubscribe: unsubscribe,
	}
	return id
}

// Unsubscribe removes a subscription by id. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	if info, ok := h.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(h.subscriptions, id)
	}
}

// Subscriptions returns the active subscriptions.
func (h *Hub) Subscriptions() []SubscriptionInfo {
	h.subMu.RLock()
	defer h.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(h.subscriptions))
	for _, sub := range h.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}

// GuardObserver returns a guard observer that publishes GuardIntercepted events.
func (h *Hub) GuardObserver() func(guard.Interception) {
	return func(i guard.Interception) {
		errStr := i.Err.Error()
		h.Emit(Event{
			Type:    GuardIntercepted,
			Source:  i.Handler,
			Message: i.Message,
			Error:   &errStr,
			Context: map[string]any{"recovered": i.Recovered},
		})
	}
}

// RecordObserver returns a record observer that publishes FieldResolved and
// FieldFailed events.
func (h *Hub) RecordObserver() func(record.Access) {
	return func(a record.Access) {
		event := Event{
			Type:    FieldResolved,
			Source:  a.Record.String(),
			Field:   a.Field,
			Context: map[string]any{"kind": string(a.Kind)},
		}
		if a.Err != nil {
			errStr := a.Err.Error()
			event.Type = FieldFailed
			event.Error = &errStr
		}
		h.Emit(event)
	}
}
