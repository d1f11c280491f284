// Package lifecycle owns every mutation of an order after creation: the
// state machine, and the cooking-timer scheduler that drives the countdown.
package lifecycle

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

const lockStripes = 64

// Engine validates and applies order transitions. It is the single entry
// point for order mutation; staff overrides, payment confirmations, and the
// scheduler all go through it.
//
// Mutations of the same order are serialized by striped per-order locks;
// different orders proceed in parallel. Notifications always fire after the
// persist succeeds, never before.
type Engine struct {
	store    ports.OrderStore
	notifier ports.Notifier
	logger   *logger.Logger

	locks [lockStripes]sync.Mutex
}

func NewEngine(store ports.OrderStore, notifier ports.Notifier, log *logger.Logger) *Engine {
	return &Engine{store: store, notifier: notifier, logger: log}
}

func (e *Engine) lockFor(orderID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(orderID))
	return &e.locks[h.Sum32()%lockStripes]
}

// CreateOrder validates the command, persists a new order in
// awaiting_payment, and appends the initial history row. No notification is
// sent: the admin channel learns about the order when payment confirms.
func (e *Engine) CreateOrder(ctx context.Context, cmd ports.CreateOrderCommand) (*orders.Order, error) {
	name := strings.TrimSpace(cmd.CustomerName)
	if name == "" {
		return nil, orders.NewValidationError("customerName", "customer name is required")
	}
	if strings.TrimSpace(cmd.CustomerPhone) == "" {
		return nil, orders.NewValidationError("customerPhone", "customer phone is required")
	}
	if strings.TrimSpace(cmd.LocationID) == "" {
		return nil, orders.NewValidationError("locationId", "pickup location is required")
	}

	estimated := cmd.EstimatedMinutes
	if estimated == 0 {
		estimated = orders.DefaultEstimatedMinutes
	}
	if estimated < 0 {
		return nil, orders.NewValidationError("estimatedMinutes", "estimated minutes must be positive")
	}

	o := &orders.Order{
		ID:               orders.NewOrderID(),
		CustomerName:     name,
		CustomerPhone:    strings.TrimSpace(cmd.CustomerPhone),
		CustomerEmail:    cmd.CustomerEmail,
		Items:            cmd.Items,
		Subtotal:         cmd.Subtotal,
		Tax:              cmd.Tax,
		Total:            cmd.Total,
		Status:           orders.StatusAwaitingPayment,
		PaymentStatus:    orders.PaymentPending,
		LocationID:       cmd.LocationID,
		UserID:           cmd.UserID,
		EstimatedMinutes: estimated,
		RemainingMinutes: estimated,
	}

	if err := o.ValidateTotals(); err != nil {
		return nil, err
	}

	if err := e.store.InsertOrder(ctx, o); err != nil {
		e.logger.Error(ctx, "order_insert_failed", "Failed to persist new order", err)
		return nil, err
	}

	e.logger.Info(ctx, "order_created", "Order created", map[string]any{
		"order_id": o.ID,
		"total":    o.Total.Float(),
		"location": o.LocationID,
	})
	return o, nil
}

// Apply moves an order to target and records the transition.
//
// Rules:
//   - unknown order id fails with orders.ErrNotFound;
//   - applying confirmed to an order already at confirmed or later is an
//     idempotent no-op (the webhook and the synchronous verify path race);
//   - re-applying the order's current status is a no-op;
//   - any other target is accepted (staff override escape hatch), but a
//     transition that skips or rewinds lifecycle states logs a warning;
//   - entering cooking resets the countdown to the estimate, entering ready
//     zeroes it; a caller-supplied remaining value wins, clamped to
//     [0, estimatedMinutes];
//   - the notification broadcast happens only after a successful persist.
func (e *Engine) Apply(ctx context.Context, orderID string, target orders.OrderStatus, remaining *int, actor string) (*orders.Order, error) {
	if !target.Valid() {
		return nil, orders.NewValidationError("status", "unknown status: "+string(target))
	}

	mu := e.lockFor(orderID)
	mu.Lock()

	o, err := e.store.FetchOrderByID(ctx, orderID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	from := o.Status

	// Idempotent paths: a duplicate payment confirmation, or a repeat of
	// the current status, changes nothing and notifies nobody.
	if target == from || (target == orders.StatusConfirmed && from.AtLeast(orders.StatusConfirmed)) {
		mu.Unlock()
		return o, nil
	}

	var rem *int
	switch {
	case remaining != nil:
		v := *remaining
		if v < 0 {
			v = 0
		}
		if v > o.EstimatedMinutes {
			v = o.EstimatedMinutes
		}
		rem = &v
	case target == orders.StatusCooking:
		v := o.EstimatedMinutes
		rem = &v
	case target == orders.StatusReady:
		v := 0
		rem = &v
	}

	var payment *orders.PaymentStatus
	if target == orders.StatusConfirmed {
		p := orders.PaymentCompleted
		payment = &p
	}

	if orders.SkipsStates(from, target) {
		e.logger.Warn(ctx, "transition_override", "Status override skips lifecycle states", map[string]any{
			"order_id": orderID,
			"from":     from,
			"to":       target,
			"actor":    actor,
		})
	}

	if err := e.store.UpdateStatus(ctx, orderID, target, rem, payment); err != nil {
		mu.Unlock()
		e.logger.Error(ctx, "transition_failed", "Failed to persist status transition", err)
		return nil, err
	}

	o.Status = target
	if rem != nil {
		o.RemainingMinutes = *rem
	}
	if payment != nil {
		o.PaymentStatus = *payment
	}
	mu.Unlock()

	e.logger.Info(ctx, "order_transitioned", "Order status changed", map[string]any{
		"order_id": orderID,
		"from":     from,
		"to":       target,
		"actor":    actor,
	})

	if from == orders.StatusAwaitingPayment && target == orders.StatusConfirmed {
		e.notifier.OrderCreated(o)
	} else {
		e.notifier.OrderUpdated(o)
	}
	return o, nil
}

// DecrementCooking is the scheduler's per-order step: take the per-order
// lock, re-check that the order is still cooking (a staff override may have
// won the race), decrement the countdown, and flip to ready in the same tick
// when it reaches zero.
//
// Returns (order, true) when a decrement was persisted.
func (e *Engine) DecrementCooking(ctx context.Context, orderID string) (*orders.Order, bool, error) {
	mu := e.lockFor(orderID)
	mu.Lock()

	o, err := e.store.FetchOrderByID(ctx, orderID)
	if err != nil {
		mu.Unlock()
		return nil, false, err
	}

	if o.Status != orders.StatusCooking || o.RemainingMinutes <= 0 {
		mu.Unlock()
		return nil, false, nil
	}

	rem := o.RemainingMinutes - 1
	if rem == 0 {
		if err := e.store.UpdateStatus(ctx, orderID, orders.StatusReady, &rem, nil); err != nil {
			mu.Unlock()
			return nil, false, err
		}
		o.Status = orders.StatusReady
	} else {
		if err := e.store.UpdateCountdown(ctx, orderID, rem); err != nil {
			mu.Unlock()
			return nil, false, err
		}
	}
	o.RemainingMinutes = rem
	mu.Unlock()

	e.notifier.OrderUpdated(o)
	return o, true, nil
}
