package dto

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/moneymovement"
)

// CreateMoneyMovementRequest records a cash or non-cash movement.
type CreateMoneyMovementRequest struct {
	Kind         moneymovement.Kind     `json:"kind" binding:"required"`
	Account      entity.AccountRef      `json:"account"`
	Description  string                 `json:"description"`
	Amount       types.Money            `json:"amount"`
	Date         types.Date             `json:"date"`
	MovementType moneymovement.Category `json:"movementType" binding:"required"`
	IsIncome     bool                   `json:"isIncome"`
}

// ToInput converts the request into service input. A missing date means today.
func (r CreateMoneyMovementRequest) ToInput() moneymovement.CreateInput {
	date := r.Date
	if date.IsZero() {
		date = types.Today()
	}
	return moneymovement.CreateInput{
		Kind:         r.Kind,
		Account:      r.Account,
		Description:  r.Description,
		Amount:       r.Amount,
		Date:         date,
		MovementType: r.MovementType,
		IsIncome:     r.IsIncome,
	}
}

// UpdateDescriptionRequest replaces the free-text description of a movement.
type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}
