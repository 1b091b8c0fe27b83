package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/ledger"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// AccountHandler serves member, subscriber and vehicle accounts.
type AccountHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(base *BaseHandler, service *ledger.Service) *AccountHandler {
	return &AccountHandler{BaseHandler: base, service: service}
}

// Open handles POST /accounts.
func (h *AccountHandler) Open(c *gin.Context) {
	var req dto.OpenAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.service.OpenAccount(c.Request.Context(), req.Kind, req.OwnerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, account)
}

// List handles GET /accounts?kind=.
func (h *AccountHandler) List(c *gin.Context) {
	filter := ledger.ListFilter{
		ListFilter: h.ListFilter(c),
		Kind:       entity.AccountKind(strings.ToUpper(c.Query("kind"))),
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	writeList(c, result)
}

// Get handles GET /accounts/:kind/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	account, err := h.service.Get(c.Request.Context(), ref)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, account)
}

// Balance handles GET /accounts/:kind/:id/balance.
func (h *AccountHandler) Balance(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), ref)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BalanceResponse{Account: ref, Balance: balance})
}

// Adjust handles POST /accounts/:kind/:id/adjust.
func (h *AccountHandler) Adjust(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	var req dto.AdjustBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	balance, err := h.service.AdjustBalance(c.Request.Context(), ref, req.Delta, dateOrToday(req.Date))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BalanceResponse{Account: ref, Balance: balance})
}

// Correct handles POST /accounts/:kind/:id/correct.
func (h *AccountHandler) Correct(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	var req dto.CorrectBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.service.Correct(c.Request.Context(), ref, req.NewBalance, dateOrToday(req.Date), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, account)
}

// Deactivate handles DELETE /accounts/:kind/:id.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), ref); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func dateOrToday(d types.Date) types.Date {
	if d.IsZero() {
		return types.Today()
	}
	return d
}
