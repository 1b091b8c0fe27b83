package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// MovementTypeHandler serves the income/expense type registry.
type MovementTypeHandler struct {
	*CatalogHandler[*movementtype.Type, dto.CreateMovementTypeRequest, dto.UpdateMovementTypeRequest]
	service *movementtype.Service
}

// NewMovementTypeHandler creates a new movement type handler.
func NewMovementTypeHandler(base *BaseHandler, service *movementtype.Service) *MovementTypeHandler {
	cfg := CatalogHandlerConfig[*movementtype.Type, dto.CreateMovementTypeRequest, dto.UpdateMovementTypeRequest]{
		Service: service.CatalogService,
		MapCreateDTO: func(req dto.CreateMovementTypeRequest) *movementtype.Type {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMovementTypeRequest, existing *movementtype.Type) *movementtype.Type {
			req.ApplyTo(existing)
			return existing
		},
	}
	return &MovementTypeHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
		service:        service,
	}
}

// Recurring handles GET /movement-types/recurring.
func (h *MovementTypeHandler) Recurring(c *gin.Context) {
	items, err := h.service.Recurring(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemsResponse{Items: items})
}

// FindByName handles GET /movement-types/by-name?kind=&name=.
func (h *MovementTypeHandler) FindByName(c *gin.Context) {
	t, err := h.service.FindByName(c.Request.Context(), movementtype.Kind(c.Query("kind")), c.Query("name"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}
