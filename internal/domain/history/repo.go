package history

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// Repository persists account history rows.
type Repository interface {
	Create(ctx context.Context, h *AccountHistory) error
	GetByID(ctx context.Context, historyID id.ID) (*AccountHistory, error)
	Update(ctx context.Context, h *AccountHistory) error

	// Find returns the active row of an account for a period or NotFound.
	Find(ctx context.Context, account entity.AccountRef, period types.Period) (*AccountHistory, error)

	// ListByAccount returns active rows of an account ordered by period.
	ListByAccount(ctx context.Context, account entity.AccountRef) ([]*AccountHistory, error)
}
