package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/app/payments"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// webhookBodyLimit caps webhook payloads; gateway events are small.
const webhookBodyLimit = 1 << 20

// PaymentHandler serves the two confirmation paths.
type PaymentHandler struct {
	adapter *payments.Adapter
	logger  *logger.Logger
}

func NewPaymentHandler(adapter *payments.Adapter, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{adapter: adapter, logger: log}
}

type verifyPaymentRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	OrderID   string `json:"orderId"`
}

// Verify is the synchronous confirmation path, called by the client after
// the gateway redirects back to the success page.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req verifyPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	o, err := h.adapter.VerifySession(c.Request.Context(), req.SessionID, req.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": ports.ViewOf(o)})
}

// Webhook receives signed gateway deliveries. The signature is checked over
// the raw body before anything is parsed.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		writeError(c, err)
		return
	}

	if _, err := h.adapter.HandleWebhook(c.Request.Context(),
		c.GetHeader(payments.SignatureHeader), raw); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
