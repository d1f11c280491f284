package ports

import (
	"context"

	"github.com/curbsidehq/curbside/internal/domain/catalog"
	"github.com/curbsidehq/curbside/internal/domain/orders"
)

// OrderStore is the single storage interface the lifecycle engine and the
// scheduler are written against. Each operation has a fixed, statically
// known shape; there is one implementation per backend (postgres, sqlite).
//
// Atomicity contract: every mutating operation is atomic for its one order
// (status + countdown + history move together). No operation spans multiple
// orders.
type OrderStore interface {
	// InsertOrder persists a new order and appends the initial history row
	// for its status. Fails the whole insert if either part fails.
	InsertOrder(ctx context.Context, o *orders.Order) error

	FetchOrderByID(ctx context.Context, id string) (*orders.Order, error)

	// FetchOrderBySession resolves an order from the payment gateway's
	// session reference (webhook correlation).
	FetchOrderBySession(ctx context.Context, sessionID string) (*orders.Order, error)

	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) ([]orders.Order, error)

	// ListRecentOrders returns the n newest orders.
	ListRecentOrders(ctx context.Context, n int) ([]orders.Order, error)

	ListOrdersByUser(ctx context.Context, userID string) ([]orders.Order, error)

	// ListCooking returns orders with status=cooking and a positive
	// countdown; the scheduler's per-tick work set.
	ListCooking(ctx context.Context) ([]orders.Order, error)

	// UpdateStatus persists a status transition and appends a history row.
	// remaining, when non-nil, overwrites the countdown; payment, when
	// non-nil, overwrites the payment status.
	UpdateStatus(ctx context.Context, id string, status orders.OrderStatus, remaining *int, payment *orders.PaymentStatus) error

	// UpdateCountdown persists a new remainingMinutes for an order that is
	// still cooking. No history row: the status did not change.
	UpdateCountdown(ctx context.Context, id string, remaining int) error

	SetGatewaySession(ctx context.Context, id, sessionID string) error

	ListHistory(ctx context.Context, id string) ([]orders.StatusHistoryEntry, error)

	CountByStatus(ctx context.Context) (map[orders.OrderStatus]int, error)
}

// CatalogStore covers the menu and location CRUD surface.
type CatalogStore interface {
	ListMenu(ctx context.Context) ([]catalog.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*catalog.MenuItem, error)
	InsertMenuItem(ctx context.Context, m *catalog.MenuItem) error
	UpdateMenuItem(ctx context.Context, m *catalog.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error

	ListLocations(ctx context.Context) ([]catalog.Location, error)
	GetLocation(ctx context.Context, id string) (*catalog.Location, error)
	InsertLocation(ctx context.Context, l *catalog.Location) error
	UpdateLocation(ctx context.Context, l *catalog.Location) error
	// DeleteLocation removes the location record only; historic orders keep
	// their location_id reference.
	DeleteLocation(ctx context.Context, id string) error

	CountMenuItems(ctx context.Context) (int, error)
	CountLocations(ctx context.Context) (int, error)
}
