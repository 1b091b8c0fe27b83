// Package history snapshots account balances at month end.
package history

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
)

// AccountHistory is the closed balance of an account for one period.
// Rows are never mutated after creation except for soft delete.
type AccountHistory struct {
	entity.BaseEntity

	// Account is stored as account_kind/account_id.
	Account          entity.AccountRef `db:"-" json:"account"`
	Period           types.Period      `db:"period" json:"period"`
	RegistrationDate types.Date        `db:"registration_date" json:"registrationDate"`
	MonthEndBalance  types.Money       `db:"month_end_balance" json:"monthEndBalance"`
}

// CloseReport summarizes a CloseMonthAll run.
type CloseReport struct {
	Period  types.Period `json:"period"`
	Closed  int          `json:"closed"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}
