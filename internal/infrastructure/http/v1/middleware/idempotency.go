package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/apperror"
	appctx "taxiledger/internal/core/context"
	"taxiledger/internal/infrastructure/storage/postgres"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const (
	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// IdempotencyStore remembers the response of every keyed mutating request.
type IdempotencyStore interface {
	AcquireKey(ctx context.Context, key, operatorID, operation, requestHash string) (*postgres.IdempotencyReplay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// Idempotency middleware protects against duplicate requests.
// Applies to POST/PUT/PATCH/DELETE requests carrying X-Idempotency-Key.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, err := io.ReadAll(limited)
		if err != nil {
			_ = c.Error(apperror.NewValidation("failed to read request body").WithCause(err))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		// The operation includes the concrete path so one key cannot replay
		// a response for a different resource.
		operation := c.Request.Method + " " + c.Request.URL.Path

		ctx := c.Request.Context()
		replay, err := store.AcquireKey(ctx, key, appctx.GetOperatorID(ctx), operation, requestHash)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
			} else {
				_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			}
			c.Abort()
			return
		}

		if replay != nil {
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyKey, key)
		c.Set(ctxIdempotencyStore, store)

		c.Next()
	}
}

// IdempotencyFromContext returns the acquired key and its store, or a nil store
// when the request is not keyed.
func IdempotencyFromContext(c *gin.Context) (string, IdempotencyStore) {
	key, ok := c.Get(ctxIdempotencyKey)
	if !ok {
		return "", nil
	}
	store, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return "", nil
	}
	s, _ := store.(IdempotencyStore)
	return key.(string), s
}
