package dto

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// OpenAccountRequest opens the account of a master-data owner.
type OpenAccountRequest struct {
	Kind    entity.AccountKind `json:"kind" binding:"required"`
	OwnerID id.ID              `json:"ownerId"`
}

// AdjustBalanceRequest applies a signed delta to an account balance.
type AdjustBalanceRequest struct {
	Delta types.Money `json:"delta"`
	Date  types.Date  `json:"date"`
}

// CorrectBalanceRequest overwrites a balance with an audited reason.
type CorrectBalanceRequest struct {
	NewBalance types.Money `json:"newBalance"`
	Date       types.Date  `json:"date"`
	Reason     string      `json:"reason" binding:"required"`
}

// BalanceResponse reports the balance of one account.
type BalanceResponse struct {
	Account entity.AccountRef `json:"account"`
	Balance types.Money       `json:"balance"`
}
