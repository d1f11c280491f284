package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curbsidehq/curbside/internal/domain/orders"
)

// errorBody is the uniform error envelope for every failed request.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps domain errors onto HTTP status codes. Unrecognized errors
// become opaque 500s; the real cause goes to the log, not the client.
func writeError(c *gin.Context, err error) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, orders.ErrSignatureInvalid):
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid signature"})
	case errors.Is(err, orders.ErrPaymentVerification):
		c.JSON(http.StatusPaymentRequired, errorBody{Error: "payment verification failed"})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
