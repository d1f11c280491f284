// Package notifier fans order events out to connected clients: an admin
// scope that sees every order, and per-order scopes for customers tracking
// their own pickup. Events are mirrored onto the message broker for
// out-of-process subscribers.
package notifier

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
	"github.com/curbsidehq/curbside/internal/shared/rabbitmq"
)

const (
	EventOrderCreated = "order-created"
	EventOrderUpdated = "order-updated"
)

// subscriberBuffer bounds each subscription's queue; a subscriber that falls
// behind loses events rather than stalling the engine.
const subscriberBuffer = 32

// Event is the payload delivered to every scope: the type plus the full
// order projection, never a diff.
type Event struct {
	Type  string          `json:"type"`
	Order ports.OrderView `json:"order"`
}

// Subscription is one connected client's event stream.
type Subscription struct {
	ch      chan Event
	orderID string // empty for admin scope
}

// Events returns the receive side of the subscription.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Hub implements ports.Notifier in-process. All methods are safe for
// concurrent use and never block the caller: delivery is at-most-once, and a
// full subscriber buffer drops the event.
type Hub struct {
	mirror ports.EventPublisher // nil when the broker is disabled
	logger *logger.Logger

	mu      sync.RWMutex
	admin   map[*Subscription]struct{}
	byOrder map[string]map[*Subscription]struct{}
}

var _ ports.Notifier = (*Hub)(nil)

func NewHub(mirror ports.EventPublisher, log *logger.Logger) *Hub {
	return &Hub{
		mirror:  mirror,
		logger:  log,
		admin:   make(map[*Subscription]struct{}),
		byOrder: make(map[string]map[*Subscription]struct{}),
	}
}

// SubscribeAdmin registers a client for every order's events.
func (h *Hub) SubscribeAdmin() *Subscription {
	sub := &Subscription{ch: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	h.admin[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// SubscribeOrder registers a client for one order's events only.
func (h *Hub) SubscribeOrder(orderID string) *Subscription {
	sub := &Subscription{ch: make(chan Event, subscriberBuffer), orderID: orderID}
	h.mu.Lock()
	set := h.byOrder[orderID]
	if set == nil {
		set = make(map[*Subscription]struct{})
		h.byOrder[orderID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if sub.orderID == "" {
		if _, ok := h.admin[sub]; !ok {
			h.mu.Unlock()
			return
		}
		delete(h.admin, sub)
	} else {
		set := h.byOrder[sub.orderID]
		if _, ok := set[sub]; !ok {
			h.mu.Unlock()
			return
		}
		delete(set, sub)
		if len(set) == 0 {
			delete(h.byOrder, sub.orderID)
		}
	}
	h.mu.Unlock()
	close(sub.ch)
}

// OrderCreated announces a newly paid order to the admin scope and mirrors
// it to the broker.
func (h *Hub) OrderCreated(o *orders.Order) {
	ev := Event{Type: EventOrderCreated, Order: ports.ViewOf(o)}

	h.mu.RLock()
	for sub := range h.admin {
		send(sub, ev)
	}
	for sub := range h.byOrder[o.ID] {
		send(sub, ev)
	}
	h.mu.RUnlock()

	h.publish("order.created", ev)
}

// OrderUpdated announces a state change to the admin scope and the order's
// own scope, and mirrors it to the broker.
func (h *Hub) OrderUpdated(o *orders.Order) {
	ev := Event{Type: EventOrderUpdated, Order: ports.ViewOf(o)}

	h.mu.RLock()
	for sub := range h.admin {
		send(sub, ev)
	}
	for sub := range h.byOrder[o.ID] {
		send(sub, ev)
	}
	h.mu.RUnlock()

	h.publish("order.updated."+o.ID, ev)
}

func send(sub *Subscription, ev Event) {
	select {
	case sub.ch <- ev:
	default:
		// subscriber too slow; drop
	}
}

func (h *Hub) publish(routingKey string, ev Event) {
	if h.mirror == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error(context.Background(), "event_marshal_failed", "Failed to encode order event", err)
		return
	}
	if err := h.mirror.Publish(rabbitmq.EventsExchange, routingKey, body); err != nil {
		// the broker mirror is best-effort; in-process delivery already happened
		h.logger.Error(context.Background(), "event_publish_failed", "Failed to mirror order event to broker", err)
	}
}
