package ports

import (
	"time"

	"github.com/curbsidehq/curbside/internal/domain/orders"
)

// OrderItemView is the wire shape of one line item.
type OrderItemView struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderView is the full order projection carried by order reads and by
// every real-time event (events carry the whole projection, not a diff).
type OrderView struct {
	ID               string          `json:"id"`
	CustomerName     string          `json:"customerName"`
	CustomerPhone    string          `json:"customerPhone"`
	CustomerEmail    *string         `json:"customerEmail,omitempty"`
	Items            []OrderItemView `json:"items"`
	Subtotal         float64         `json:"subtotal"`
	Tax              float64         `json:"tax"`
	Total            float64         `json:"total"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	LocationID       string          `json:"locationId"`
	UserID           *string         `json:"userId,omitempty"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	RemainingMinutes int             `json:"remainingMinutes"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ViewOf converts the domain aggregate to its wire projection.
func ViewOf(o *orders.Order) OrderView {
	items := make([]OrderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemView{Name: it.Name, Price: it.Price.Float(), Quantity: it.Quantity}
	}
	return OrderView{
		ID:               o.ID,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		CustomerEmail:    o.CustomerEmail,
		Items:            items,
		Subtotal:         o.Subtotal.Float(),
		Tax:              o.Tax.Float(),
		Total:            o.Total.Float(),
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		LocationID:       o.LocationID,
		UserID:           o.UserID,
		EstimatedMinutes: o.EstimatedMinutes,
		RemainingMinutes: o.RemainingMinutes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
