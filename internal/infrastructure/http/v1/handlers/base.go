package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/infrastructure/http/v1/dto"
	"taxiledger/internal/infrastructure/http/v1/middleware"
	"taxiledger/pkg/logger"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the Gin context and aborts the request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// PathID parses the :name path parameter.
func (h *BaseHandler) PathID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", name))
		return id.Nil(), false
	}
	return parsed, true
}

// PathAccount parses /:kind/:id where kind is member, subscriber or vehicle.
func (h *BaseHandler) PathAccount(c *gin.Context) (entity.AccountRef, bool) {
	kind := entity.AccountKind(strings.ToUpper(c.Param("kind")))
	if !kind.Valid() {
		h.Error(c, apperror.NewValidation("unknown account kind").WithDetail("kind", c.Param("kind")))
		return entity.AccountRef{}, false
	}
	accountID, ok := h.PathID(c, "id")
	if !ok {
		return entity.AccountRef{}, false
	}
	return entity.AccountRef{Kind: kind, ID: accountID}, true
}

// QueryID parses an optional id query parameter.
func (h *BaseHandler) QueryID(c *gin.Context, key string) (*id.ID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", key))
		return nil, false
	}
	return &parsed, true
}

// QueryDate parses an optional dd/MM/yyyy query parameter.
func (h *BaseHandler) QueryDate(c *gin.Context, key string) (types.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return types.Date{}, true
	}
	d, err := types.ParseDate(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("date must match dd/MM/yyyy").WithDetail("param", key))
		return types.Date{}, false
	}
	return d, true
}

// QueryPeriod parses an optional YYYY-MM query parameter.
func (h *BaseHandler) QueryPeriod(c *gin.Context, key string) (types.Period, bool) {
	raw := c.Query(key)
	if raw == "" {
		return "", true
	}
	p, err := types.ParsePeriod(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("period must match YYYY-MM").WithDetail("param", key))
		return "", false
	}
	return p, true
}

// QueryAccount parses the optional accountKind/accountId query pair.
func (h *BaseHandler) QueryAccount(c *gin.Context) (entity.AccountRef, bool) {
	kind := entity.AccountKind(c.Query("accountKind"))
	accountID, ok := h.QueryID(c, "accountId")
	if !ok {
		return entity.AccountRef{}, false
	}
	if kind == "" && accountID == nil {
		return entity.NoAccount(), true
	}
	ref := entity.AccountRef{Kind: kind}
	if accountID != nil {
		ref.ID = *accountID
	}
	if err := ref.Validate(); err != nil {
		h.Error(c, err)
		return entity.AccountRef{}, false
	}
	return ref, true
}

// ListFilter reads the common pagination and ordering parameters.
func (h *BaseHandler) ListFilter(c *gin.Context) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")
	filter.IncludeInactive = c.Query("includeInactive") == "true"
	return filter
}

// CompleteIdempotency stores the response under the request's idempotency key
// with its status code and content type for replay.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key, store := middleware.IdempotencyFromContext(c)
	if store == nil {
		return
	}
	if err := store.CompleteKey(c.Request.Context(), key, statusCode, contentType, response); err != nil {
		logger.Warn(c.Request.Context(), "failed to store idempotent response", "key", key, "error", err)
	}
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	// 204 must replay as 204 with empty body.
	h.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

// writeList sends a page of items. Lists are reads and never recorded for replay.
func writeList[T any](c *gin.Context, result domain.ListResult[T]) {
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
