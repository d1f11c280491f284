package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/app/notifier"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// keepAliveInterval spaces SSE heartbeats so idle proxies keep the stream
// open.
const keepAliveInterval = 15 * time.Second

// EventsHandler streams hub events to browsers over SSE.
type EventsHandler struct {
	hub    *notifier.Hub
	logger *logger.Logger
}

func NewEventsHandler(hub *notifier.Hub, log *logger.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: log}
}

// AdminStream streams every order event. Admin only.
func (h *EventsHandler) AdminStream(c *gin.Context) {
	sub := h.hub.SubscribeAdmin()
	defer h.hub.Unsubscribe(sub)
	h.stream(c, sub)
}

// OrderStream streams one order's events; the customer tracking page.
func (h *EventsHandler) OrderStream(c *gin.Context) {
	sub := h.hub.SubscribeOrder(c.Param("id"))
	defer h.hub.Unsubscribe(sub)
	h.stream(c, sub)
}

func (h *EventsHandler) stream(c *gin.Context, sub *notifier.Subscription) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
