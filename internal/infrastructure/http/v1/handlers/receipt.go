package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/receipt"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler serves issued receipts.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /receipts.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, r)
}

// List handles GET /receipts.
func (h *ReceiptHandler) List(c *gin.Context) {
	filter := receipt.ListFilter{ListFilter: h.ListFilter(c)}

	var ok bool
	if filter.Account, ok = h.QueryAccount(c); !ok {
		return
	}
	if filter.Period, ok = h.QueryPeriod(c, "period"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	writeList(c, result)
}

// Get handles GET /receipts/:id.
func (h *ReceiptHandler) Get(c *gin.Context) {
	receiptID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// Delete handles DELETE /receipts/:id.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	receiptID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), receiptID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
