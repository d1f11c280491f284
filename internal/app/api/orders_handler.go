package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/app/lifecycle"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// OrderHandler serves order creation, reads, and staff status updates.
type OrderHandler struct {
	engine  *lifecycle.Engine
	store   ports.OrderStore
	gateway ports.PaymentGateway
	logger  *logger.Logger
}

func NewOrderHandler(engine *lifecycle.Engine, store ports.OrderStore, gateway ports.PaymentGateway, log *logger.Logger) *OrderHandler {
	return &OrderHandler{engine: engine, store: store, gateway: gateway, logger: log}
}

type createOrderItem struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"required,gte=1"`
}

type createOrderRequest struct {
	CustomerName     string            `json:"customerName" binding:"required"`
	CustomerPhone    string            `json:"customerPhone" binding:"required"`
	CustomerEmail    *string           `json:"customerEmail" binding:"omitempty,email"`
	Items            []createOrderItem `json:"items" binding:"required,min=1,max=50,dive"`
	Subtotal         float64           `json:"subtotal" binding:"gte=0"`
	Tax              float64           `json:"tax" binding:"gte=0"`
	Total            float64           `json:"total" binding:"gt=0"`
	LocationID       string            `json:"locationId" binding:"required"`
	UserID           *string           `json:"userId"`
	EstimatedMinutes int               `json:"estimatedMinutes" binding:"omitempty,gte=1,lte=240"`
}

type createOrderResponse struct {
	OrderID            string `json:"orderId"`
	PaymentRedirectURL string `json:"paymentRedirectUrl"`
}

// Create persists the order in awaiting_payment and opens a checkout
// session. A gateway failure still returns the order id: the order exists
// and payment can be retried against it.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	items := make([]orders.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = orders.OrderItem{
			Name:     it.Name,
			Price:    orders.NewMoneyFromFloat(it.Price),
			Quantity: it.Quantity,
		}
	}

	cmd := ports.CreateOrderCommand{
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		Items:            items,
		Subtotal:         orders.NewMoneyFromFloat(req.Subtotal),
		Tax:              orders.NewMoneyFromFloat(req.Tax),
		Total:            orders.NewMoneyFromFloat(req.Total),
		LocationID:       req.LocationID,
		UserID:           req.UserID,
		EstimatedMinutes: req.EstimatedMinutes,
	}

	ctx := c.Request.Context()

	o, err := h.engine.CreateOrder(ctx, cmd)
	if err != nil {
		writeError(c, err)
		return
	}

	session, err := h.gateway.CreateCheckoutSession(ctx, o)
	if err != nil {
		h.logger.Error(ctx, "checkout_session_failed", "Failed to open checkout session for order "+o.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "payment gateway unavailable",
			"orderId": o.ID,
		})
		return
	}

	if err := h.store.SetGatewaySession(ctx, o.ID, session.SessionID); err != nil {
		h.logger.Error(ctx, "session_persist_failed", "Failed to store gateway session for order "+o.ID, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:            o.ID,
		PaymentRedirectURL: session.RedirectURL,
	})
}

// Get returns one order's full projection.
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.store.FetchOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ports.ViewOf(o))
}

// List returns every order, newest first. Staff only.
func (h *OrderHandler) List(c *gin.Context) {
	list, err := h.store.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewsOf(list))
}

type updateStatusRequest struct {
	Status           string `json:"status" binding:"required"`
	RemainingMinutes *int   `json:"remainingMinutes" binding:"omitempty,gte=0"`
}

// UpdateStatus applies a staff transition through the engine.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	o, err := h.engine.Apply(c.Request.Context(), c.Param("id"),
		orders.OrderStatus(req.Status), req.RemainingMinutes, "staff")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ports.ViewOf(o))
}

type historyEntryView struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}

// History returns the order's status transitions in the order they happened.
func (h *OrderHandler) History(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.FetchOrderByID(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	entries, err := h.store.ListHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]historyEntryView, len(entries))
	for i, e := range entries {
		out[i] = historyEntryView{Status: string(e.Status), ChangedAt: e.ChangedAt}
	}
	c.JSON(http.StatusOK, out)
}

// CustomerOrders returns the orders placed by one customer account.
func (h *OrderHandler) CustomerOrders(c *gin.Context) {
	list, err := h.store.ListOrdersByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewsOf(list))
}

func viewsOf(list []orders.Order) []ports.OrderView {
	out := make([]ports.OrderView, len(list))
	for i := range list {
		out[i] = ports.ViewOf(&list[i])
	}
	return out
}
