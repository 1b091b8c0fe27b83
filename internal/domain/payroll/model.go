// Package payroll manages member payroll settlements and the advances they absorb.
package payroll

import (
	"context"
	"strings"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// Advance is money paid to a member ahead of payroll.
type Advance struct {
	entity.BaseEntity

	MemberAccountID     id.ID       `db:"member_account_id" json:"memberAccountId"`
	PayrollSettlementID *id.ID      `db:"payroll_settlement_id" json:"payrollSettlementId,omitempty"`
	MovementID          *id.ID      `db:"movement_id" json:"movementId,omitempty"`
	Date                types.Date  `db:"advance_date" json:"date"`
	Amount              types.Money `db:"amount" json:"amount"`
	Notes               string      `db:"notes" json:"notes"`
}

// Settled reports whether the advance is linked to a payroll settlement.
func (a *Advance) Settled() bool {
	return a.PayrollSettlementID != nil
}

// Validate implements entity.Validatable interface.
func (a *Advance) Validate(_ context.Context) error {
	if id.IsNil(a.MemberAccountID) {
		return apperror.NewValidation("member account is required").WithDetail("field", "memberAccountId")
	}
	if a.Date.IsZero() {
		return apperror.NewValidation("advance date is required").WithDetail("field", "date")
	}
	if !a.Amount.IsPositive() {
		return apperror.NewValidation("advance amount must be positive").
			WithDetail("field", "amount").
			WithDetail("amount", a.Amount.String())
	}
	a.Notes = strings.TrimSpace(a.Notes)
	return nil
}

// Settlement is the payroll of one member for one period.
type Settlement struct {
	entity.BaseEntity

	MemberAccountID id.ID        `db:"member_account_id" json:"memberAccountId"`
	GrossSalary     types.Money  `db:"gross_salary" json:"grossSalary"`
	NetSalary       types.Money  `db:"net_salary" json:"netSalary"`
	Period          types.Period `db:"period" json:"period"`
	PaymentDate     types.Date   `db:"payment_date" json:"paymentDate"`

	// Advances is loaded by GetSettlement.
	Advances []*Advance `db:"-" json:"advances,omitempty"`
}

// Paid reports whether the settlement has a payment date.
func (s *Settlement) Paid() bool {
	return !s.PaymentDate.IsZero()
}

// Validate implements entity.Validatable interface.
func (s *Settlement) Validate(_ context.Context) error {
	if id.IsNil(s.MemberAccountID) {
		return apperror.NewValidation("member account is required").WithDetail("field", "memberAccountId")
	}
	if s.GrossSalary.IsNegative() {
		return apperror.NewValidation("gross salary cannot be negative").
			WithDetail("field", "grossSalary").
			WithDetail("amount", s.GrossSalary.String())
	}
	if s.NetSalary.IsNegative() {
		return apperror.NewValidation("net salary cannot be negative").
			WithDetail("field", "netSalary").
			WithDetail("amount", s.NetSalary.String())
	}
	if !s.Period.Valid() {
		return apperror.NewValidation("period must match YYYY-MM").WithDetail("field", "period")
	}
	return nil
}
