package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "taxiledger/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Gin context keys.
const (
	ctxTraceID   = "trace_id"
	ctxRequestID = "request_id"
)

// Trace middleware adds request tracing context.
// Incoming request and trace IDs are kept, missing ones are generated.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext(c.GetHeader(HeaderRequestID))
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			trace.TraceID = traceID
		}

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ctxTraceID, trace.TraceID)
		c.Set(ctxRequestID, trace.RequestID)

		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
