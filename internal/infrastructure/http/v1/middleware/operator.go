package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "taxiledger/internal/core/context"
)

const (
	HeaderOperatorID   = "X-Operator-ID"
	HeaderOperatorName = "X-Operator-Name"
)

// Operator middleware records who issued the request. Authentication happens
// upstream; the headers only label logs and idempotency keys.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := c.GetHeader(HeaderOperatorID)
		if operatorID == "" {
			c.Next()
			return
		}

		ctx := appctx.WithOperator(c.Request.Context(), &appctx.Operator{
			ID:   operatorID,
			Name: c.GetHeader(HeaderOperatorName),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
