package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/fuel"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// FuelHandler serves fuel reimbursements of member accounts.
type FuelHandler struct {
	*BaseHandler
	service *fuel.Service
}

// NewFuelHandler creates a new fuel handler.
func NewFuelHandler(base *BaseHandler, service *fuel.Service) *FuelHandler {
	return &FuelHandler{BaseHandler: base, service: service}
}

// Get handles GET /fuel/:id where id is a member account.
func (h *FuelHandler) Get(c *gin.Context) {
	memberID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), memberID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// Accumulate handles POST /fuel/:id/accumulate.
func (h *FuelHandler) Accumulate(c *gin.Context) {
	memberID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.AccumulateFuelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.Accumulate(c.Request.Context(), memberID, req.Expense, req.Percentage)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// Reimburse handles POST /fuel/:id/reimburse.
func (h *FuelHandler) Reimburse(c *gin.Context) {
	memberID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.DateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	amount, err := h.service.Reimburse(c.Request.Context(), memberID, dateOrToday(req.Date))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AmountResponse{Amount: amount})
}
