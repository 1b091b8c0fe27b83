package receipt

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
)

// ListFilter narrows receipt listings. Zero values are ignored.
type ListFilter struct {
	domain.ListFilter

	Account entity.AccountRef
	Period  types.Period
}

// Repository persists receipts.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error)

	// GetForUpdate returns the receipt with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, receiptID id.ID) (*Receipt, error)
	Update(ctx context.Context, r *Receipt) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Receipt], error)

	// FindByAccountPeriod returns the active receipt of an account for a period or NotFound.
	FindByAccountPeriod(ctx context.Context, account entity.AccountRef, period types.Period) (*Receipt, error)

	// FindByNumber returns the active receipt with the given numbering or NotFound.
	FindByNumber(ctx context.Context, receiptNumber, bookletNumber, receiptType string) (*Receipt, error)
}
