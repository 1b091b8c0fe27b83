// Package fuel accumulates the fuel share owed to drivers and reimburses it periodically.
package fuel

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// ReimbursementInterval is the minimum number of days between reimbursements.
const ReimbursementInterval = 14

// Reimbursement is the pending fuel share of one member account.
type Reimbursement struct {
	entity.BaseEntity

	MemberAccountID       id.ID       `db:"member_account_id" json:"memberAccountId"`
	AccumulatedAmount     types.Money `db:"accumulated_amount" json:"accumulatedAmount"`
	LastReimbursementDate types.Date  `db:"last_reimbursement_date" json:"lastReimbursementDate"`
	CreatedDate           types.Date  `db:"created_date" json:"createdDate"`
}

// DueOn reports whether the record has money pending and its last
// reimbursement (or creation) is at least ReimbursementInterval days before date.
func (r *Reimbursement) DueOn(date types.Date) bool {
	if !r.AccumulatedAmount.IsPositive() {
		return false
	}
	since := r.LastReimbursementDate
	if since.IsZero() {
		since = r.CreatedDate
	}
	return date.DaysSince(since) >= ReimbursementInterval
}

// Report summarizes a ReimburseDue run.
type Report struct {
	Date       types.Date  `json:"date"`
	Reimbursed int         `json:"reimbursed"`
	Failed     int         `json:"failed"`
	Total      types.Money `json:"total"`
}
