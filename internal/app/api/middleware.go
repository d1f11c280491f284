package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/curbsidehq/curbside/internal/shared/logger"
)

const (
	headerRequestID  = "X-Request-ID"
	headerCustomerID = "X-Customer-ID"
)

// requestID tags every request with an id (client-supplied or generated) and
// threads it through the context so log lines correlate.
func requestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

// adminAuth guards staff endpoints with the configured admin key, presented
// as a bearer token. Comparison is constant-time.
func adminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !adminKeyValid(c, adminKey) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}

// customerOrAdmin lets a customer read their own resources: either the admin
// key, or a customer id header matching the path parameter.
func customerOrAdmin(adminKey, pathParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKeyValid(c, adminKey) {
			c.Next()
			return
		}
		claimed := c.GetHeader(headerCustomerID)
		if claimed == "" || claimed != c.Param(pathParam) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "forbidden"})
			return
		}
		c.Next()
	}
}

func adminKeyValid(c *gin.Context, adminKey string) bool {
	if adminKey == "" {
		return false
	}
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(adminKey)) == 1
}
