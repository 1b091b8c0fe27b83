package dto

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
)

// CreateAccountMovementRequest records an income, monthly expense or workshop repair.
type CreateAccountMovementRequest struct {
	Account            entity.AccountRef    `json:"account"`
	Kind               accountmovement.Kind `json:"kind" binding:"required"`
	TypeID             *id.ID               `json:"typeId"`
	Amount             types.Money          `json:"amount"`
	Period             types.Period         `json:"period"`
	Note               string               `json:"note"`
	CurrentInstallment *int                 `json:"currentInstallment"`
	FinalInstallment   *int                 `json:"finalInstallment"`
	RepairType         string               `json:"repairType"`
	RemainingBalance   *types.Money         `json:"remainingBalance"`

	// PostImmediately posts the movement as of PostDate after creation.
	PostImmediately bool       `json:"postImmediately"`
	PostDate        types.Date `json:"postDate"`
}

// ToInput converts the request into service input.
func (r CreateAccountMovementRequest) ToInput() accountmovement.CreateInput {
	return accountmovement.CreateInput{
		Account:            r.Account,
		Kind:               r.Kind,
		TypeID:             r.TypeID,
		Amount:             r.Amount,
		Period:             r.Period,
		Note:               r.Note,
		CurrentInstallment: r.CurrentInstallment,
		FinalInstallment:   r.FinalInstallment,
		RepairType:         r.RepairType,
		RemainingBalance:   r.RemainingBalance,
	}
}

// UpdateAccountMovementRequest edits the mutable fields of a movement.
type UpdateAccountMovementRequest struct {
	Amount             *types.Money `json:"amount"`
	Note               *string      `json:"note"`
	CurrentInstallment *int         `json:"currentInstallment"`
	FinalInstallment   *int         `json:"finalInstallment"`
}

// ToInput converts the request into service input.
func (r UpdateAccountMovementRequest) ToInput() accountmovement.UpdateInput {
	return accountmovement.UpdateInput{
		Amount:             r.Amount,
		Note:               r.Note,
		CurrentInstallment: r.CurrentInstallment,
		FinalInstallment:   r.FinalInstallment,
	}
}

// GenerateRecurringRequest selects the period of recurring generation.
type GenerateRecurringRequest struct {
	Period types.Period `json:"period"`
}
