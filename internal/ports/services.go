package ports

import (
	"context"

	"github.com/curbsidehq/curbside/internal/domain/orders"
)

// CreateOrderCommand is the validated input for placing an order. Amounts
// are already converted to cents at the HTTP boundary.
type CreateOrderCommand struct {
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    *string
	Items            []orders.OrderItem
	Subtotal         orders.Money
	Tax              orders.Money
	Total            orders.Money
	LocationID       string
	UserID           *string
	EstimatedMinutes int // 0 means "use the default"
}

// Notifier receives a fully persisted order projection after every
// successful transition. Implementations must not block the caller; delivery
// is best-effort, at-most-once.
type Notifier interface {
	// OrderCreated announces a newly paid order to the admin scope.
	OrderCreated(o *orders.Order)
	// OrderUpdated announces a state change to the admin scope and to the
	// order's own tracking scope.
	OrderUpdated(o *orders.Order)
}

// EventPublisher mirrors notifier events onto the message broker so that
// out-of-process subscribers (the notification subscriber mode) see them.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CheckoutSession is the gateway's handle for collecting a payment.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// GatewaySession is the gateway's view of a session when queried.
type GatewaySession struct {
	Paid    bool
	OrderID string
}

// PaymentGateway abstracts the external payment processor. Calls must honor
// the context deadline; the adapter wraps them with a bounded timeout.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, o *orders.Order) (CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (GatewaySession, error)
}
