package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/domain/payroll"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// PayrollHandler serves salary advances and payroll settlements.
type PayrollHandler struct {
	*BaseHandler
	service *payroll.Service
}

// NewPayrollHandler creates a new payroll handler.
func NewPayrollHandler(base *BaseHandler, service *payroll.Service) *PayrollHandler {
	return &PayrollHandler{BaseHandler: base, service: service}
}

// CreateAdvance handles POST /advances.
func (h *PayrollHandler) CreateAdvance(c *gin.Context) {
	var req dto.CreateAdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.CreateAdvance(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, a)
}

// ListAdvances handles GET /advances?memberAccountId=&unsettledOnly=.
func (h *PayrollHandler) ListAdvances(c *gin.Context) {
	memberID, ok := h.QueryID(c, "memberAccountId")
	if !ok {
		return
	}
	if memberID == nil {
		h.Error(c, apperror.NewValidation("memberAccountId is required").WithDetail("param", "memberAccountId"))
		return
	}

	items, err := h.service.ListAdvances(c.Request.Context(), *memberID, c.Query("unsettledOnly") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemsResponse{Items: items})
}

// LinkAdvance handles POST /advances/:id/link.
func (h *PayrollHandler) LinkAdvance(c *gin.Context) {
	advanceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.LinkAdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.LinkAdvance(c.Request.Context(), advanceID, req.SettlementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, a)
}

// CreateSettlement handles POST /payroll-settlements.
func (h *PayrollHandler) CreateSettlement(c *gin.Context) {
	var req dto.CreateSettlementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s, err := h.service.CreateSettlement(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, s)
}

// GetSettlement handles GET /payroll-settlements/:id.
func (h *PayrollHandler) GetSettlement(c *gin.Context) {
	settlementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetSettlement(c.Request.Context(), settlementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// MarkPaid handles POST /payroll-settlements/:id/pay.
func (h *PayrollHandler) MarkPaid(c *gin.Context) {
	settlementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.DateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	s, err := h.service.MarkPaid(c.Request.Context(), settlementID, dateOrToday(req.Date))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// ComputeNet handles POST /payroll-settlements/net.
func (h *PayrollHandler) ComputeNet(c *gin.Context) {
	var req dto.ComputeNetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	net, err := h.service.ComputeNet(c.Request.Context(), req.GrossSalary, req.AdvanceIDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AmountResponse{Amount: net})
}
