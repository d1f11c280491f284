// Package api is the HTTP surface: gin router, handlers, and the middleware
// that separates the public customer endpoints from the staff ones.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/app/lifecycle"
	"github.com/curbsidehq/curbside/internal/app/notifier"
	"github.com/curbsidehq/curbside/internal/app/payments"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// Deps collects everything the router wires together.
type Deps struct {
	Engine   *lifecycle.Engine
	Orders   ports.OrderStore
	Catalog  ports.CatalogStore
	Hub      *notifier.Hub
	Payments *payments.Adapter
	Gateway  ports.PaymentGateway
	AdminKey string
	Logger   *logger.Logger
}

// NewRouter builds the full route table.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ordersH := NewOrderHandler(d.Engine, d.Orders, d.Gateway, d.Logger)
	paymentsH := NewPaymentHandler(d.Payments, d.Logger)
	catalogH := NewCatalogHandler(d.Catalog, d.Logger)
	dashboardH := NewDashboardHandler(d.Orders, d.Catalog, d.Logger)
	eventsH := NewEventsHandler(d.Hub, d.Logger)

	admin := adminAuth(d.AdminKey)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/orders", ordersH.Create)
		apiGroup.GET("/orders", admin, ordersH.List)
		apiGroup.GET("/orders/:id", ordersH.Get)
		apiGroup.PUT("/orders/:id/status", admin, ordersH.UpdateStatus)
		apiGroup.GET("/orders/:id/history", ordersH.History)
		apiGroup.GET("/orders/:id/events", eventsH.OrderStream)
		apiGroup.GET("/events", admin, eventsH.AdminStream)

		apiGroup.POST("/verify-payment", paymentsH.Verify)
		apiGroup.POST("/webhook", paymentsH.Webhook)

		apiGroup.GET("/customers/:id/orders", customerOrAdmin(d.AdminKey, "id"), ordersH.CustomerOrders)

		apiGroup.GET("/dashboard", admin, dashboardH.Get)

		apiGroup.GET("/menu", catalogH.ListMenu)
		apiGroup.GET("/menu/:id", catalogH.GetMenuItem)
		apiGroup.POST("/menu", admin, catalogH.CreateMenuItem)
		apiGroup.PUT("/menu/:id", admin, catalogH.UpdateMenuItem)
		apiGroup.DELETE("/menu/:id", admin, catalogH.DeleteMenuItem)

		apiGroup.GET("/locations", catalogH.ListLocations)
		apiGroup.GET("/locations/:id", catalogH.GetLocation)
		apiGroup.POST("/locations", admin, catalogH.CreateLocation)
		apiGroup.PUT("/locations/:id", admin, catalogH.UpdateLocation)
		apiGroup.DELETE("/locations/:id", admin, catalogH.DeleteLocation)
	}

	return r
}
