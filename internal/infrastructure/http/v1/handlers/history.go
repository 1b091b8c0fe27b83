package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/history"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// HistoryHandler serves monthly balance snapshots.
type HistoryHandler struct {
	*BaseHandler
	service *history.Service
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(base *BaseHandler, service *history.Service) *HistoryHandler {
	return &HistoryHandler{BaseHandler: base, service: service}
}

// List handles GET /accounts/:kind/:id/history.
func (h *HistoryHandler) List(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), ref)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ItemsResponse{Items: items})
}

// Close handles POST /accounts/:kind/:id/history.
func (h *HistoryHandler) Close(c *gin.Context) {
	ref, ok := h.PathAccount(c)
	if !ok {
		return
	}

	var req dto.PeriodRequest
	if !h.BindJSON(c, &req) {
		return
	}

	snapshot, err := h.service.CloseMonth(c.Request.Context(), ref, req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, snapshot)
}

// CloseAll handles POST /history/close.
func (h *HistoryHandler) CloseAll(c *gin.Context) {
	var req dto.PeriodRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.CloseMonthAll(c.Request.Context(), req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Delete handles DELETE /history/:id.
func (h *HistoryHandler) Delete(c *gin.Context) {
	historyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), historyID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
