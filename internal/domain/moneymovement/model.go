// Package moneymovement records cash and non-cash money transfers.
// Money movements post immediately: cash movements to the cash register and,
// when an account is referenced, the same signed delta to that account.
package moneymovement

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
)

// Kind separates cash from non-cash transfers.
type Kind string

const (
	KindCash    Kind = "CASH"
	KindNonCash Kind = "NON_CASH"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindCash || k == KindNonCash
}

// Category tags what the money was for.
type Category string

const (
	CategoryAdvance        Category = "ADVANCE"
	CategoryWorkshopOrder  Category = "WORKSHOP_ORDER"
	CategoryReceiptPayment Category = "RECEIPT_PAYMENT"
	CategorySalary         Category = "SALARY"
	CategoryFuel           Category = "FUEL"
	CategoryOther          Category = "OTHER"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAdvance, CategoryWorkshopOrder, CategoryReceiptPayment,
		CategorySalary, CategoryFuel, CategoryOther:
		return true
	}
	return false
}

// MoneyMovement is a cash or non-cash transfer.
type MoneyMovement struct {
	entity.BaseEntity

	Kind Kind `db:"kind" json:"kind"`

	// Account is optional; stored as account_kind/account_id.
	Account entity.AccountRef `db:"-" json:"account"`

	// Number is the voucher number (CAJ-YYYY-NNNNN for cash, MOV-YYYY-NNNNN otherwise).
	Number      string `db:"number" json:"number"`
	Description string `db:"description" json:"description"`

	// Amount is signed; negative values flag errors and are kept as entered.
	Amount       types.Money `db:"amount" json:"amount"`
	Date         types.Date  `db:"date" json:"date"`
	MovementType Category    `db:"movement_type" json:"movementType"`
	IsIncome     bool        `db:"is_income" json:"isIncome"`
}

// Delta returns the signed effect on the cash register and the account.
func (m *MoneyMovement) Delta() types.Money {
	return types.SignedDelta(m.Amount, m.IsIncome)
}

// Validate implements entity.Validatable interface.
func (m *MoneyMovement) Validate(_ context.Context) error {
	if !m.Kind.Valid() {
		return apperror.NewValidation("kind must be CASH or NON_CASH").WithDetail("field", "kind")
	}
	if !m.MovementType.Valid() {
		return apperror.NewValidation("unknown movement type").
			WithDetail("field", "movementType").
			WithDetail("value", string(m.MovementType))
	}
	if err := m.Account.Validate(); err != nil {
		return err
	}
	if m.Amount.IsZero() {
		return apperror.NewValidation("amount must not be zero").WithDetail("field", "amount")
	}
	if m.Date.IsZero() {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}

	switch m.MovementType {
	case CategoryAdvance:
		if !m.Account.Is(entity.AccountMember) {
			return apperror.NewValidation("advances require a member account").WithDetail("field", "account")
		}
		if !m.Amount.IsPositive() {
			return apperror.NewValidation("advance amount must be positive").WithDetail("field", "amount")
		}
	case CategoryWorkshopOrder:
		if !m.Account.Is(entity.AccountVehicle) {
			return apperror.NewValidation("workshop orders require a vehicle account").WithDetail("field", "account")
		}
	}
	return nil
}
