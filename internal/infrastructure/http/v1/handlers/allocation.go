package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/domain/settlement"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// AllocationHandler serves settlement allocations between payers and account movements.
type AllocationHandler struct {
	*BaseHandler
	service *settlement.Service
}

// NewAllocationHandler creates a new allocation handler.
func NewAllocationHandler(base *BaseHandler, service *settlement.Service) *AllocationHandler {
	return &AllocationHandler{BaseHandler: base, service: service}
}

// Allocate handles POST /allocations.
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.Allocate(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, a)
}

// Get handles GET /allocations/:id.
func (h *AllocationHandler) Get(c *gin.Context) {
	allocationID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	a, err := h.service.Get(c.Request.Context(), allocationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, a)
}

// Modify handles PUT /allocations/:id.
func (h *AllocationHandler) Modify(c *gin.Context) {
	allocationID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.ModifyAllocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.Modify(c.Request.Context(), allocationID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, a)
}

// EditNote handles PUT /allocations/:id/note.
func (h *AllocationHandler) EditNote(c *gin.Context) {
	allocationID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.EditNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.EditNote(c.Request.Context(), allocationID, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, a)
}

// Delete handles DELETE /allocations/:id.
func (h *AllocationHandler) Delete(c *gin.Context) {
	allocationID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), allocationID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListByMovement handles GET /account-movements/:id/allocations.
func (h *AllocationHandler) ListByMovement(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListByMovement(c.Request.Context(), movementID, c.Query("includeInactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemsResponse{Items: items})
}

// Summary handles GET /account-movements/:id/settlement.
func (h *AllocationHandler) Summary(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// ListByPayer handles GET /allocations?payerKind=&payerId=.
func (h *AllocationHandler) ListByPayer(c *gin.Context) {
	payerID, ok := h.QueryID(c, "payerId")
	if !ok {
		return
	}
	if payerID == nil {
		h.Error(c, apperror.NewValidation("payerId is required").WithDetail("param", "payerId"))
		return
	}
	payer := entity.PayerRef{
		Kind: entity.PayerKind(strings.ToUpper(c.Query("payerKind"))),
		ID:   *payerID,
	}
	if err := payer.Validate(); err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.service.ListByPayer(c.Request.Context(), payer, c.Query("includeInactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemsResponse{Items: items})
}
