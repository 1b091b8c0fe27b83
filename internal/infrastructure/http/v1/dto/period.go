package dto

import (
	"taxiledger/internal/core/types"
)

// PeriodRequest selects a YYYY-MM accounting period.
type PeriodRequest struct {
	Period types.Period `json:"period"`
}

// CashAdjustRequest applies a signed delta to the cash register.
type CashAdjustRequest struct {
	Delta types.Money `json:"delta"`
}

// CashBalanceResponse reports the cash register balance.
type CashBalanceResponse struct {
	Balance types.Money `json:"balance"`
}

// AccumulateFuelRequest adds a share of a fuel expense to a member's pending reimbursement.
type AccumulateFuelRequest struct {
	Expense    types.Money `json:"expense"`
	Percentage types.Money `json:"percentage"`
}
