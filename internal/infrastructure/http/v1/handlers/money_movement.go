package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/moneymovement"
	"taxiledger/internal/infrastructure/http/v1/dto"
)

// MoneyMovementHandler serves cash and non-cash money movements.
type MoneyMovementHandler struct {
	*BaseHandler
	service *moneymovement.Service
}

// NewMoneyMovementHandler creates a new money movement handler.
func NewMoneyMovementHandler(base *BaseHandler, service *moneymovement.Service) *MoneyMovementHandler {
	return &MoneyMovementHandler{BaseHandler: base, service: service}
}

// Create handles POST /money-movements.
func (h *MoneyMovementHandler) Create(c *gin.Context) {
	var req dto.CreateMoneyMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// List handles GET /money-movements.
func (h *MoneyMovementHandler) List(c *gin.Context) {
	filter := moneymovement.ListFilter{
		ListFilter:   h.ListFilter(c),
		Kind:         moneymovement.Kind(c.Query("kind")),
		MovementType: moneymovement.Category(c.Query("movementType")),
	}

	var ok bool
	if filter.Account, ok = h.QueryAccount(c); !ok {
		return
	}
	if filter.From, ok = h.QueryDate(c, "from"); !ok {
		return
	}
	if filter.To, ok = h.QueryDate(c, "to"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	writeList(c, result)
}

// Get handles GET /money-movements/:id.
func (h *MoneyMovementHandler) Get(c *gin.Context) {
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

// UpdateDescription handles PATCH /money-movements/:id.
func (h *MoneyMovementHandler) UpdateDescription(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDescriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.UpdateDescription(c.Request.Context(), movementID, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Delete handles DELETE /money-movements/:id?date=. The date is when the
// reversal hits the account and the cash register; it defaults to today.
func (h *MoneyMovementHandler) Delete(c *gin.Context) {
	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	date, ok := h.QueryDate(c, "date")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), movementID, dateOrToday(date)); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
