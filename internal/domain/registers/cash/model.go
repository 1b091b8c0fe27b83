// Package cash provides the singleton cash register and its daily history.
package cash

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// RegisterID is the well-known key of the singleton cash register.
var RegisterID = id.MustParse("00000000-0000-0000-0000-000000000001")

// Register is the running cash-on-hand balance. It may go negative to surface discrepancies.
type Register struct {
	entity.BaseEntity

	Amount types.Money `db:"amount" json:"amount"`
}

// DayHistory is the opening and closing cash snapshot of one calendar day.
type DayHistory struct {
	entity.BaseEntity

	Date          types.Date   `db:"date" json:"date"`
	InitialAmount types.Money  `db:"initial_amount" json:"initialAmount"`
	FinalAmount   *types.Money `db:"final_amount" json:"finalAmount,omitempty"`
}

// Closed reports whether the day has a final amount.
func (d *DayHistory) Closed() bool {
	return d.FinalAmount != nil
}
