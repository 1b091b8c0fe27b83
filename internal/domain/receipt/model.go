// Package receipt manages the receipts issued to members and subscribers.
// Receipts are payer instruments for settlement allocations.
package receipt

import (
	"context"
	"strings"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
)

// Receipt is a numbered receipt from a booklet.
type Receipt struct {
	entity.BaseEntity

	// Account is a member or subscriber account; stored as account_kind/account_id.
	Account entity.AccountRef `db:"-" json:"account"`

	ReceiptNumber string       `db:"receipt_number" json:"receiptNumber"`
	BookletNumber string       `db:"booklet_number" json:"bookletNumber"`
	ReceiptType   string       `db:"receipt_type" json:"receiptType"`
	Period        types.Period `db:"period" json:"period"`
	IssueDate     types.Date   `db:"issue_date" json:"issueDate"`
}

// Validate implements entity.Validatable interface.
func (r *Receipt) Validate(_ context.Context) error {
	if err := r.Account.Require(); err != nil {
		return err
	}
	if !r.Account.Is(entity.AccountMember) && !r.Account.Is(entity.AccountSubscriber) {
		return apperror.NewValidation("receipts belong to member or subscriber accounts").
			WithDetail("field", "account").
			WithDetail("kind", string(r.Account.Kind))
	}

	r.ReceiptNumber = strings.TrimSpace(r.ReceiptNumber)
	r.BookletNumber = strings.TrimSpace(r.BookletNumber)
	r.ReceiptType = strings.TrimSpace(r.ReceiptType)
	switch {
	case r.ReceiptNumber == "":
		return apperror.NewValidation("receipt number is required").WithDetail("field", "receiptNumber")
	case r.BookletNumber == "":
		return apperror.NewValidation("booklet number is required").WithDetail("field", "bookletNumber")
	case r.ReceiptType == "":
		return apperror.NewValidation("receipt type is required").WithDetail("field", "receiptType")
	}

	if !r.Period.Valid() {
		return apperror.NewValidation("period must match YYYY-MM").WithDetail("field", "period")
	}
	if r.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").WithDetail("field", "issueDate")
	}
	return nil
}
