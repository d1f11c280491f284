package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// recentOrderCount is how many orders the dashboard shows.
const recentOrderCount = 5

// DashboardHandler aggregates the admin landing-page numbers.
type DashboardHandler struct {
	orders  ports.OrderStore
	catalog ports.CatalogStore
	logger  *logger.Logger
}

func NewDashboardHandler(ordersStore ports.OrderStore, catalogStore ports.CatalogStore, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{orders: ordersStore, catalog: catalogStore, logger: log}
}

type dashboardResponse struct {
	TotalOrders        int               `json:"totalOrders"`
	TotalMenuItems     int               `json:"totalMenuItems"`
	TotalLocations     int               `json:"totalLocations"`
	StatusDistribution map[string]int    `json:"statusDistribution"`
	RecentOrders       []ports.OrderView `json:"recentOrders"`
}

func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	byStatus, err := h.orders.CountByStatus(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	total := 0
	distribution := make(map[string]int, len(byStatus))
	for status, n := range byStatus {
		total += n
		distribution[string(status)] = n
	}

	menuCount, err := h.catalog.CountMenuItems(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	locationCount, err := h.catalog.CountLocations(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	recent, err := h.orders.ListRecentOrders(ctx, recentOrderCount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboardResponse{
		TotalOrders:        total,
		TotalMenuItems:     menuCount,
		TotalLocations:     locationCount,
		StatusDistribution: distribution,
		RecentOrders:       viewsOf(recent),
	})
}
