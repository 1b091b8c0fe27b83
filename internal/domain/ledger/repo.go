package ledger

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
)

// ListFilter narrows account listings.
type ListFilter struct {
	domain.ListFilter

	// Kind restricts to one account variant when set.
	Kind entity.AccountKind
}

// Repository persists accounts.
type Repository interface {
	// Create inserts a new account. Duplicate (kind, owner) is a Conflict.
	Create(ctx context.Context, a *Account) error

	// GetByID returns the account or NotFound.
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)

	// GetForUpdate returns the account with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, accountID id.ID) (*Account, error)

	// GetByOwner returns the account of an owner or NotFound.
	GetByOwner(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (*Account, error)

	// Update stores balance, lastModified and active with optimistic locking.
	Update(ctx context.Context, a *Account) error

	// List returns accounts matching the filter.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Account], error)
}
