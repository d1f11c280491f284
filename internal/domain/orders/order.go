package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEstimatedMinutes is applied when the client omits an estimate.
	DefaultEstimatedMinutes = 20

	// MaxItems bounds a single order; a food truck has no 100-line tickets.
	MaxItems = 50
)

// OrderItem is a single line in an order. Items are immutable once the order
// is created; the stored JSON is the audit copy.
type OrderItem struct {
	Name     string `json:"name"`
	Price    Money  `json:"price"` // per-unit in cents
	Quantity int    `json:"quantity"`
}

// Order is the aggregate owned by the order store. All mutation after
// creation goes through the lifecycle engine.
type Order struct {
	ID               string
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    *string
	Items            []OrderItem
	Subtotal         Money
	Tax              Money
	Total            Money
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	GatewaySessionID *string
	LocationID       string
	UserID           *string
	EstimatedMinutes int
	RemainingMinutes int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrderID builds a human-readable id like ORDER-3F9A21C4.
func NewOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORDER-" + strings.ToUpper(raw[:8])
}

// ItemsSubtotal recomputes the subtotal from line items.
func (o *Order) ItemsSubtotal() Money {
	var sum Money
	for _, it := range o.Items {
		sum += Money(it.Quantity) * it.Price
	}
	return sum
}

// ValidateTotals checks the money invariant at creation time: the stored
// totals must satisfy subtotal + tax == total within one cent, and the line
// items must back the subtotal. Totals are never recomputed afterwards.
func (o *Order) ValidateTotals() error {
	if len(o.Items) == 0 {
		return NewValidationError("items", "order must contain at least one item")
	}
	if len(o.Items) > MaxItems {
		return NewValidationError("items", fmt.Sprintf("order may contain at most %d items", MaxItems))
	}
	for i, it := range o.Items {
		if strings.TrimSpace(it.Name) == "" {
			return NewValidationError(fmt.Sprintf("items[%d].name", i), "item name is required")
		}
		if it.Price < 0 {
			return NewValidationError(fmt.Sprintf("items[%d].price", i), "item price must not be negative")
		}
		if it.Quantity < 1 {
			return NewValidationError(fmt.Sprintf("items[%d].quantity", i), "item quantity must be a positive integer")
		}
	}
	if o.Total <= 0 {
		return NewValidationError("total", "total must be positive")
	}
	if !WithinCent(o.Subtotal+o.Tax, o.Total) {
		return NewValidationError("total", "subtotal + tax must equal total")
	}
	if !WithinCent(o.ItemsSubtotal(), o.Subtotal) {
		return NewValidationError("subtotal", "line items do not add up to subtotal")
	}
	return nil
}

// ClampRemaining keeps the countdown inside [0, estimated].
func (o *Order) ClampRemaining() {
	if o.RemainingMinutes < 0 {
		o.RemainingMinutes = 0
	}
	if o.RemainingMinutes > o.EstimatedMinutes {
		o.RemainingMinutes = o.EstimatedMinutes
	}
}
