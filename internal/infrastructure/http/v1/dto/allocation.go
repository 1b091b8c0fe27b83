package dto

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/settlement"
)

// AllocateRequest applies part of a payer to an account movement.
type AllocateRequest struct {
	AccountMovementID id.ID           `json:"accountMovementId"`
	Payer             entity.PayerRef `json:"payer"`
	Amount            types.Money     `json:"amount"`
	Date              types.Date      `json:"date"`
	Note              string          `json:"note"`
}

// ToInput converts the request into service input. A missing date means today.
func (r AllocateRequest) ToInput() settlement.AllocateInput {
	date := r.Date
	if date.IsZero() {
		date = types.Today()
	}
	return settlement.AllocateInput{
		AccountMovementID: r.AccountMovementID,
		Payer:             r.Payer,
		Amount:            r.Amount,
		Date:              date,
		Note:              r.Note,
	}
}

// ModifyAllocationRequest changes the amount or date of an allocation.
type ModifyAllocationRequest struct {
	Amount *types.Money `json:"amount"`
	Date   *types.Date  `json:"date"`
}

// ToInput converts the request into service input.
func (r ModifyAllocationRequest) ToInput() settlement.ModifyInput {
	return settlement.ModifyInput{Amount: r.Amount, Date: r.Date}
}

// EditNoteRequest replaces the note of an allocation.
type EditNoteRequest struct {
	Note string `json:"note"`
}
