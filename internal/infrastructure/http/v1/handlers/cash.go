package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/registers/cash"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// CashHandler serves the cash register and its day history.
type CashHandler struct {
	*BaseHandler
	service *cash.Service
}

// NewCashHandler creates a new cash handler.
func NewCashHandler(base *BaseHandler, service *cash.Service) *CashHandler {
	return &CashHandler{BaseHandler: base, service: service}
}

// Get handles GET /cash.
func (h *CashHandler) Get(c *gin.Context) {
	register, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, register)
}

// Adjust handles POST /cash/adjust.
func (h *CashHandler) Adjust(c *gin.Context) {
	var req dto.CashAdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	balance, err := h.service.Adjust(c.Request.Context(), req.Delta)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CashBalanceResponse{Balance: balance})
}

// OpenDay handles POST /cash/days/open.
func (h *CashHandler) OpenDay(c *gin.Context) {
	var req dto.DateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	day, err := h.service.OpenDay(c.Request.Context(), dateOrToday(req.Date))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, day)
}

// CloseDay handles POST /cash/days/close.
func (h *CashHandler) CloseDay(c *gin.Context) {
	var req dto.DateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	day, err := h.service.CloseDay(c.Request.Context(), dateOrToday(req.Date))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, day)
}

// ListDays handles GET /cash/days?from=&to=.
func (h *CashHandler) ListDays(c *gin.Context) {
	from, ok := h.QueryDate(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryDate(c, "to")
	if !ok {
		return
	}

	days, err := h.service.ListDays(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemsResponse{Items: days})
}
