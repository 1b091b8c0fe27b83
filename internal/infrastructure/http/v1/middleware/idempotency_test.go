package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/infrastructure/storage/postgres"
)

type storedKey struct {
	operatorID string
	hash       string
	replay     *postgres.IdempotencyReplay
}

// memoryStore mimics the PostgreSQL store semantics closely enough for routing tests.
type memoryStore struct {
	mu   sync.Mutex
	keys map[string]*storedKey
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: make(map[string]*storedKey)}
}

func (s *memoryStore) AcquireKey(_ context.Context, key, operatorID, _ string, requestHash string) (*postgres.IdempotencyReplay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.keys[key]
	if !ok {
		s.keys[key] = &storedKey{operatorID: operatorID, hash: requestHash}
		return nil, nil
	}
	if existing.hash != requestHash || existing.operatorID != operatorID {
		return nil, apperror.NewIdempotencyMismatch(key)
	}
	if existing.replay == nil {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return existing.replay, nil
}

func (s *memoryStore) save(key string, statusCode int, contentType string, response any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body []byte
	if response != nil {
		var err error
		if body, err = json.Marshal(response); err != nil {
			return err
		}
	}
	s.keys[key].replay = &postgres.IdempotencyReplay{StatusCode: statusCode, ContentType: contentType, Body: body}
	return nil
}

func (s *memoryStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return s.save(key, statusCode, contentType, response)
}

func (s *memoryStore) FailKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return s.save(key, statusCode, contentType, response)
}

func newIdempotentRouter(store IdempotencyStore, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(), Operator(), Idempotency(store))
	r.POST("/receipts", func(c *gin.Context) {
		*calls++
		body := gin.H{"call": *calls}
		key, s := IdempotencyFromContext(c)
		if s != nil {
			_ = s.CompleteKey(c.Request.Context(), key, http.StatusCreated, "application/json", body)
		}
		c.JSON(http.StatusCreated, body)
	})
	r.POST("/fail", func(c *gin.Context) {
		*calls++
		_ = c.Error(apperror.NewValidation("amount must not be zero"))
	})
	return r
}

func send(r http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderOperatorID, "cashier-1")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	r := newIdempotentRouter(store, &calls)

	first := send(r, "/receipts", "k-1", `{"receiptNumber":"0001"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := send(r, "/receipts", "k-1", `{"receiptNumber":"0001"}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestIdempotency_RejectsDifferentPayload(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	r := newIdempotentRouter(store, &calls)

	send(r, "/receipts", "k-1", `{"receiptNumber":"0001"}`)
	rec := send(r, "/receipts", "k-1", `{"receiptNumber":"0002"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_ReplaysFailures(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	r := newIdempotentRouter(store, &calls)

	first := send(r, "/fail", "k-2", `{}`)
	require.Equal(t, http.StatusBadRequest, first.Code)

	second := send(r, "/fail", "k-2", `{}`)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestIdempotency_UnkeyedRequestsPassThrough(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	r := newIdempotentRouter(store, &calls)

	send(r, "/receipts", "", `{}`)
	send(r, "/receipts", "", `{}`)

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.keys)
}

// truncatedBody yields part of a payload, then fails like a dropped connection.
type truncatedBody struct {
	sent bool
}

func (b *truncatedBody) Read(p []byte) (int, error) {
	if b.sent {
		return 0, io.ErrUnexpectedEOF
	}
	b.sent = true
	return copy(p, `{"receiptNum`), nil
}

func TestIdempotency_RejectsUnreadableBody(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	r := newIdempotentRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/receipts", &truncatedBody{})
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderOperatorID, "cashier-1")
	req.Header.Set(HeaderIdempotencyKey, "k-3")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, calls)
	assert.Empty(t, store.keys)
}
