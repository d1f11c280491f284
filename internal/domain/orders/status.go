package orders

// OrderStatus is a custom type that represents the current status of an order in its lifecycle.
type OrderStatus string

const (
	StatusAwaitingPayment OrderStatus = "awaiting_payment"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusCooking         OrderStatus = "cooking"
	StatusReady           OrderStatus = "ready"
	StatusCompleted       OrderStatus = "completed"
)

// PaymentStatus tracks the payment side independently of the order lifecycle.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// rank gives each status its position in the linear lifecycle.
var rank = map[OrderStatus]int{
	StatusAwaitingPayment: 0,
	StatusConfirmed:       1,
	StatusCooking:         2,
	StatusReady:           3,
	StatusCompleted:       4,
}

// Valid reports whether s is a known lifecycle status.
func (s OrderStatus) Valid() bool {
	_, ok := rank[s]
	return ok
}

// Rank returns the status position in the lifecycle (0 = awaiting_payment).
func (s OrderStatus) Rank() int { return rank[s] }

// AtLeast reports whether s has reached other in the lifecycle order.
func (s OrderStatus) AtLeast(other OrderStatus) bool {
	return rank[s] >= rank[other]
}

// SkipsStates reports whether a from->to transition jumps over an
// intermediate state or moves backwards. Overrides are permitted, but the
// engine logs them.
func SkipsStates(from, to OrderStatus) bool {
	return rank[to]-rank[from] != 1
}
