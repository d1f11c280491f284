package orders

import "time"

// StatusHistoryEntry is one row of the append-only audit trail. A row is
// written for every transition, including the initial creation. There is no
// update or delete operation for history.
type StatusHistoryEntry struct {
	OrderID   string
	Status    OrderStatus
	ChangedAt time.Time
}
