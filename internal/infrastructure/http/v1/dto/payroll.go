package dto

import (
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/payroll"
)

// CreateAdvanceRequest records a salary advance.
type CreateAdvanceRequest struct {
	MemberAccountID id.ID       `json:"memberAccountId"`
	Date            types.Date  `json:"date"`
	Amount          types.Money `json:"amount"`
	Notes           string      `json:"notes"`
	SettlementID    *id.ID      `json:"settlementId"`
}

// ToInput converts the request into service input. A missing date means today.
func (r CreateAdvanceRequest) ToInput() payroll.AdvanceInput {
	date := r.Date
	if date.IsZero() {
		date = types.Today()
	}
	return payroll.AdvanceInput{
		MemberAccountID: r.MemberAccountID,
		Date:            date,
		Amount:          r.Amount,
		Notes:           r.Notes,
		SettlementID:    r.SettlementID,
	}
}

// CreateSettlementRequest records a payroll settlement.
type CreateSettlementRequest struct {
	MemberAccountID id.ID        `json:"memberAccountId"`
	GrossSalary     types.Money  `json:"grossSalary"`
	Period          types.Period `json:"period"`
	PaymentDate     types.Date   `json:"paymentDate"`
	AdvanceIDs      []id.ID      `json:"advanceIds"`
	NetSalary       *types.Money `json:"netSalary"`
}

// ToInput converts the request into service input.
func (r CreateSettlementRequest) ToInput() payroll.SettlementInput {
	return payroll.SettlementInput{
		MemberAccountID: r.MemberAccountID,
		GrossSalary:     r.GrossSalary,
		Period:          r.Period,
		PaymentDate:     r.PaymentDate,
		AdvanceIDs:      r.AdvanceIDs,
		NetSalary:       r.NetSalary,
	}
}

// LinkAdvanceRequest attaches an advance to a settlement.
type LinkAdvanceRequest struct {
	SettlementID id.ID `json:"settlementId"`
}

// ComputeNetRequest previews the net salary of a settlement.
type ComputeNetRequest struct {
	GrossSalary types.Money `json:"grossSalary"`
	AdvanceIDs  []id.ID     `json:"advanceIds"`
}
