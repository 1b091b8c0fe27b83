package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/apperror"
	"taxiledger/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// Response already written by handler.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
			failIdempotency(c, appErr.HTTPStatus, body)
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)

		body := gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString(ctxRequestID),
			},
		}
		failIdempotency(c, http.StatusInternalServerError, body)
		c.JSON(http.StatusInternalServerError, body)
	}
}

// failIdempotency stores the error response under the request's key (best-effort).
func failIdempotency(c *gin.Context, status int, body any) {
	key, store := IdempotencyFromContext(c)
	if store == nil {
		return
	}
	if err := store.FailKey(c.Request.Context(), key, status, "application/json", body); err != nil {
		logger.Warn(c.Request.Context(), "failed to store idempotent error response", "key", key, "error", err)
	}
}
