// Package accountmovement records income and expense items against an account
// and posts ("adds") them to the account balance on demand.
package accountmovement

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/catalogs/movementtype"
)

// Kind is the movement variant.
type Kind string

const (
	KindIncome         Kind = "INCOME"
	KindMonthlyExpense Kind = "MONTHLY_EXPENSE"
	KindWorkshopRepair Kind = "WORKSHOP_REPAIR"
)

// Valid reports whether k is a known movement kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindMonthlyExpense, KindWorkshopRepair:
		return true
	}
	return false
}

// IsIncome reports whether posting increases the balance.
func (k Kind) IsIncome() bool {
	return k == KindIncome
}

// TypeKind returns the registry kind a type must have to classify this movement.
func (k Kind) TypeKind() movementtype.Kind {
	if k.IsIncome() {
		return movementtype.KindIncome
	}
	return movementtype.KindExpense
}

// AccountMovement is an income or expense item owed by or to an account.
type AccountMovement struct {
	entity.BaseEntity

	// Account is mandatory; stored as account_kind/account_id.
	Account entity.AccountRef `db:"-" json:"account"`

	Kind   Kind   `db:"kind" json:"kind"`
	TypeID *id.ID `db:"type_id" json:"typeId,omitempty"`

	// Recurring copies the type's monthly recurrence flag at creation.
	Recurring bool `db:"recurring" json:"recurring"`

	// Amount is always positive; the kind decides the sign of the posting.
	Amount types.Money  `db:"amount" json:"amount"`
	Period types.Period `db:"period" json:"period"`

	Added     bool       `db:"added" json:"added"`
	AddedDate types.Date `db:"added_date" json:"addedDate"`

	Note string `db:"note" json:"note"`

	CurrentInstallment *int `db:"current_installment" json:"currentInstallment,omitempty"`
	FinalInstallment   *int `db:"final_installment" json:"finalInstallment,omitempty"`

	// Workshop repair only.
	RepairType       string       `db:"repair_type" json:"repairType,omitempty"`
	RemainingBalance *types.Money `db:"remaining_balance" json:"remainingBalance,omitempty"`
}

// IsRepair reports whether the movement is a workshop repair.
func (m *AccountMovement) IsRepair() bool {
	return m.Kind == KindWorkshopRepair
}

// Delta returns the signed balance effect of posting the movement.
func (m *AccountMovement) Delta() types.Money {
	return types.SignedDelta(m.Amount, m.Kind.IsIncome())
}

// Remaining returns the outstanding repair balance (zero for other kinds).
func (m *AccountMovement) Remaining() types.Money {
	if m.RemainingBalance == nil {
		return types.Zero()
	}
	return *m.RemainingBalance
}

// SetRemaining replaces the repair balance.
func (m *AccountMovement) SetRemaining(v types.Money) {
	m.RemainingBalance = &v
}

// Validate implements entity.Validatable interface.
func (m *AccountMovement) Validate(_ context.Context) error {
	if err := m.Account.Require(); err != nil {
		return err
	}
	if !m.Kind.Valid() {
		return apperror.NewValidation("unknown movement kind").WithDetail("field", "kind")
	}
	if !m.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", m.Amount.String())
	}
	if !m.Period.Valid() {
		return apperror.NewValidation("period must match YYYY-MM").
			WithDetail("field", "period").
			WithDetail("value", string(m.Period))
	}
	if err := m.validateInstallments(); err != nil {
		return err
	}

	if m.IsRepair() {
		if m.RemainingBalance == nil {
			return apperror.NewValidation("remaining balance is required for workshop repairs").
				WithDetail("field", "remainingBalance")
		}
		if m.RemainingBalance.IsNegative() || m.RemainingBalance.GreaterThan(m.Amount) {
			return apperror.NewValidation("remaining balance must be between 0 and amount").
				WithDetail("field", "remainingBalance").
				WithDetail("value", m.RemainingBalance.String())
		}
	} else {
		if m.RemainingBalance != nil || m.RepairType != "" {
			return apperror.NewValidation("repair fields are only allowed on workshop repairs").
				WithDetail("field", "remainingBalance")
		}
	}
	return nil
}

func (m *AccountMovement) validateInstallments() error {
	if m.CurrentInstallment == nil && m.FinalInstallment == nil {
		return nil
	}
	if m.IsRepair() {
		return apperror.NewValidation("installments are not allowed on workshop repairs").
			WithDetail("field", "currentInstallment")
	}
	if m.CurrentInstallment == nil || m.FinalInstallment == nil {
		return apperror.NewValidation("current and final installment must be set together").
			WithDetail("field", "finalInstallment")
	}
	if *m.CurrentInstallment < 1 || *m.CurrentInstallment > *m.FinalInstallment {
		return apperror.NewValidation("installment must be between 1 and final installment").
			WithDetail("field", "currentInstallment").
			WithDetail("current", *m.CurrentInstallment).
			WithDetail("final", *m.FinalInstallment)
	}
	return nil
}
