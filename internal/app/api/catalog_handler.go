package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/domain/catalog"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// CatalogHandler serves the menu and location CRUD surface. Reads are
// public; writes sit behind the admin key.
type CatalogHandler struct {
	store  ports.CatalogStore
	logger *logger.Logger
}

func NewCatalogHandler(store ports.CatalogStore, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, logger: log}
}

type menuItemView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Emoji       *string   `json:"emoji,omitempty"`
	Available   bool      `json:"available"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func menuViewOf(m *catalog.MenuItem) menuItemView {
	return menuItemView{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price.Float(),
		Category:    m.Category,
		Emoji:       m.Emoji,
		Available:   m.Available,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type menuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"gt=0"`
	Category    string  `json:"category" binding:"required"`
	Emoji       *string `json:"emoji"`
	Available   *bool   `json:"available"`
	ImageURL    *string `json:"imageUrl"`
}

func (r *menuItemRequest) toDomain() *catalog.MenuItem {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return &catalog.MenuItem{
		Name:        r.Name,
		Description: r.Description,
		Price:       orders.NewMoneyFromFloat(r.Price),
		Category:    r.Category,
		Emoji:       r.Emoji,
		Available:   available,
		ImageURL:    r.ImageURL,
	}
}

func (h *CatalogHandler) ListMenu(c *gin.Context) {
	items, err := h.store.ListMenu(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]menuItemView, len(items))
	for i := range items {
		out[i] = menuViewOf(&items[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetMenuItem(c *gin.Context) {
	id, err := menuItemID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	m, err := h.store.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, menuViewOf(m))
}

func (h *CatalogHandler) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	m := req.toDomain()
	if err := h.store.InsertMenuItem(c.Request.Context(), m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, menuViewOf(m))
}

func (h *CatalogHandler) UpdateMenuItem(c *gin.Context) {
	id, err := menuItemID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req menuItemRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	m := req.toDomain()
	m.ID = id
	if err := h.store.UpdateMenuItem(c.Request.Context(), m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, menuViewOf(m))
}

func (h *CatalogHandler) DeleteMenuItem(c *gin.Context) {
	id, err := menuItemID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.store.DeleteMenuItem(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func menuItemID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, orders.NewValidationError("id", "menu item id must be an integer")
	}
	return id, nil
}

type locationView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Description     *string   `json:"description,omitempty"`
	CurrentLocation *string   `json:"currentLocation,omitempty"`
	Schedule        *string   `json:"schedule,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Status          string    `json:"status"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func locationViewOf(l *catalog.Location) locationView {
	return locationView{
		ID:              l.ID,
		Name:            l.Name,
		Type:            l.Type,
		Description:     l.Description,
		CurrentLocation: l.CurrentLocation,
		Schedule:        l.Schedule,
		Phone:           l.Phone,
		Status:          l.Status,
		UpdatedAt:       l.UpdatedAt,
	}
}

type createLocationRequest struct {
	ID              string  `json:"id" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Type            string  `json:"type" binding:"required,oneof=mobile fixed"`
	Description     *string `json:"description"`
	CurrentLocation *string `json:"currentLocation"`
	Schedule        *string `json:"schedule"`
	Phone           *string `json:"phone"`
	Status          string  `json:"status" binding:"omitempty,oneof=active inactive"`
}

type updateLocationRequest struct {
	Name            string  `json:"name" binding:"required"`
	Type            string  `json:"type" binding:"required,oneof=mobile fixed"`
	Description     *string `json:"description"`
	CurrentLocation *string `json:"currentLocation"`
	Schedule        *string `json:"schedule"`
	Phone           *string `json:"phone"`
	Status          string  `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (h *CatalogHandler) ListLocations(c *gin.Context) {
	list, err := h.store.ListLocations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]locationView, len(list))
	for i := range list {
		out[i] = locationViewOf(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetLocation(c *gin.Context) {
	l, err := h.store.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, locationViewOf(l))
}

// CreateLocation takes a caller-supplied id; reusing an existing id is a
// client error, not an upsert.
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetLocation(ctx, req.ID); err == nil {
		writeError(c, orders.NewValidationError("id", "location id already exists"))
		return
	} else if !errors.Is(err, orders.ErrNotFound) {
		writeError(c, err)
		return
	}

	l := &catalog.Location{
		ID:              req.ID,
		Name:            req.Name,
		Type:            req.Type,
		Description:     req.Description,
		CurrentLocation: req.CurrentLocation,
		Schedule:        req.Schedule,
		Phone:           req.Phone,
		Status:          defaultStatus(req.Status),
	}
	if err := h.store.InsertLocation(ctx, l); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, locationViewOf(l))
}

func (h *CatalogHandler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	l := &catalog.Location{
		ID:              c.Param("id"),
		Name:            req.Name,
		Type:            req.Type,
		Description:     req.Description,
		CurrentLocation: req.CurrentLocation,
		Schedule:        req.Schedule,
		Phone:           req.Phone,
		Status:          defaultStatus(req.Status),
	}
	if err := h.store.UpdateLocation(c.Request.Context(), l); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, locationViewOf(l))
}

func (h *CatalogHandler) DeleteLocation(c *gin.Context) {
	if err := h.store.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func defaultStatus(s string) string {
	if s == "" {
		return "active"
	}
	return s
}
