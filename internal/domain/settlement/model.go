// Package settlement links paying instruments (receipts, payroll settlements,
// money movements) to the account movements they pay off.
package settlement

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// Allocation records that a payer settled part of an account movement.
//
// Receipt- and payroll-backed allocations are frozen except for the note and
// can never be deleted. Money-movement-backed allocations stay editable and
// are deleted together with their movement.
type Allocation struct {
	entity.BaseEntity

	AccountMovementID id.ID `db:"account_movement_id" json:"accountMovementId"`

	// Payer is stored as payer_kind/payer_id.
	Payer entity.PayerRef `db:"-" json:"payer"`

	AllocatedAmount types.Money `db:"allocated_amount" json:"allocatedAmount"`
	AllocationDate  types.Date  `db:"allocation_date" json:"allocationDate"`
	Note            string      `db:"note" json:"note"`
}

// Validate implements entity.Validatable interface.
func (a *Allocation) Validate(_ context.Context) error {
	if id.IsNil(a.AccountMovementID) {
		return apperror.NewValidation("account movement is required").WithDetail("field", "accountMovementId")
	}
	if err := a.Payer.Validate(); err != nil {
		return err
	}
	if !a.AllocatedAmount.IsPositive() {
		return apperror.NewValidation("allocated amount must be positive").
			WithDetail("field", "allocatedAmount").
			WithDetail("value", a.AllocatedAmount.String())
	}
	if a.AllocationDate.IsZero() {
		return apperror.NewValidation("allocation date is required").WithDetail("field", "allocationDate")
	}
	return nil
}

// Summary is the payment state of one account movement.
type Summary struct {
	AccountMovementID id.ID       `json:"accountMovementId"`
	Amount            types.Money `json:"amount"`
	Allocated         types.Money `json:"allocated"`
	Outstanding       types.Money `json:"outstanding"`
	FullyPaid         bool        `json:"fullyPaid"`
	Allocations       int         `json:"allocations"`
}
