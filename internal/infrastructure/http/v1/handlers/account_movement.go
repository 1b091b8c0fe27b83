package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// AccountMovementHandler serves incomes, monthly expenses and workshop repairs.
type AccountMovementHandler struct {
	*BaseHandler
	service *accountmovement.Service
}

// NewAccountMovementHandler creates a new account movement handler.
func NewAccountMovementHandler(base *BaseHandler, service *accountmovement.Service) *AccountMovementHandler {
	return &AccountMovementHandler{BaseHandler: base, service: service}
}

// Create handles POST /account-movements. With postImmediately the movement
// is posted right after creation.
func (h *AccountMovementHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAccountMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.PostImmediately {
		m, err = h.service.Post(ctx, m.ID, dateOrToday(req.PostDate))
		if err != nil {
			h.Error(c, err)
			return
		}
	}
	h.Created(c, m)
}

// List handles GET /account-movements.
func (h *AccountMovementHandler) List(c *gin.Context) {
	filter := accountmovement.ListFilter{
		ListFilter: h.ListFilter(c),
		Kind:       accountmovement.Kind(c.Query("kind")),
	}

	var ok bool
	if filter.Account, ok = h.QueryAccount(c); !ok {
		return
	}
	if filter.Period, ok = h.QueryPeriod(c, "period"); !ok {
		return
	}
	if filter.TypeID, ok = h.QueryID(c, "typeId"); !ok {
		return
	}
	if added := c.Query("added"); added != "" {
		val := added == "true"
		filter.Added = &val
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	writeList(c, result)
}

// Get handles GET /account-movements/:id.
func (h *AccountMovementHandler) Get(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Update handles PUT /account-movements/:id.
func (h *AccountMovementHandler) Update(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAccountMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Update(c.Request.Context(), movementID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Delete handles DELETE /account-movements/:id.
func (h *AccountMovementHandler) Delete(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Post handles POST /account-movements/:id/post.
func (h *AccountMovementHandler) Post(c *gin.Context) {
	h.transition(c, h.service.Post)
}

// Unpost handles POST /account-movements/:id/unpost.
func (h *AccountMovementHandler) Unpost(c *gin.Context) {
	h.transition(c, h.service.Unpost)
}

func (h *AccountMovementHandler) transition(c *gin.Context, apply func(ctx context.Context, movementID id.ID, asOf types.Date) (*accountmovement.AccountMovement, error)) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.DateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	m, err := apply(c.Request.Context(), movementID, dateOrToday(req.Date))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// GenerateRecurring handles POST /account-movements/generate.
func (h *AccountMovementHandler) GenerateRecurring(c *gin.Context) {
	var req dto.GenerateRecurringRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.GenerateRecurring(c.Request.Context(), req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
