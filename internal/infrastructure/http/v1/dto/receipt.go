package dto

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/receipt"
)

// CreateReceiptRequest issues a numbered receipt.
type CreateReceiptRequest struct {
	Account       entity.AccountRef `json:"account"`
	ReceiptNumber string            `json:"receiptNumber" binding:"required"`
	BookletNumber string            `json:"bookletNumber"`
	ReceiptType   string            `json:"receiptType"`
	Period        types.Period      `json:"period"`
	IssueDate     types.Date        `json:"issueDate"`
}

// ToInput converts the request into service input. A missing issue date means today.
func (r CreateReceiptRequest) ToInput() receipt.CreateInput {
	issueDate := r.IssueDate
	if issueDate.IsZero() {
		issueDate = types.Today()
	}
	return receipt.CreateInput{
		Account:       r.Account,
		ReceiptNumber: r.ReceiptNumber,
		BookletNumber: r.BookletNumber,
		ReceiptType:   r.ReceiptType,
		Period:        r.Period,
		IssueDate:     issueDate,
	}
}
