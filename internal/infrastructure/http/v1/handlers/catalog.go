package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain"
)

// CatalogHandler provides generic HTTP handlers for catalog entities.
type CatalogHandler[T domain.CatalogEntity, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service *domain.CatalogService[T]

	mapCreateDTO func(dto CreateDTO) T
	mapUpdateDTO func(dto UpdateDTO, existing T) T
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T domain.CatalogEntity, CreateDTO any, UpdateDTO any] struct {
	Service      *domain.CatalogService[T]
	MapCreateDTO func(dto CreateDTO) T
	MapUpdateDTO func(dto UpdateDTO, existing T) T
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T domain.CatalogEntity, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, CreateDTO, UpdateDTO],
) *CatalogHandler[T, CreateDTO, UpdateDTO] {
	return &CatalogHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), h.ListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	writeList(c, result)
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	e := h.mapCreateDTO(req)
	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.mapUpdateDTO(req, existing)
	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// Delete handles DELETE /{entity}/:id - soft delete entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	entityID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
