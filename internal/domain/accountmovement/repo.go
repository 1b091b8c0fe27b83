package accountmovement

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
)

// ListFilter narrows movement listings. Zero values are ignored.
type ListFilter struct {
	domain.ListFilter

	Account entity.AccountRef
	Period  types.Period
	Kind    Kind
	TypeID  *id.ID
	Added   *bool
}

// Repository persists account movements.
type Repository interface {
	// Create inserts a movement. A second active recurring row for the same
	// (account, period, type) is a Conflict.
	Create(ctx context.Context, m *AccountMovement) error

	// GetByID returns the movement or NotFound.
	GetByID(ctx context.Context, movementID id.ID) (*AccountMovement, error)

	// GetForUpdate returns the movement with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, movementID id.ID) (*AccountMovement, error)

	// Update stores the mutable fields with optimistic locking.
	Update(ctx context.Context, m *AccountMovement) error

	// List returns movements matching the filter, newest period first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*AccountMovement], error)

	// ExistsRecurring reports whether an active recurring row exists for (account, period, type).
	ExistsRecurring(ctx context.Context, account entity.AccountRef, period types.Period, typeID id.ID) (bool, error)
}

// AllocationTotals reports how much of a movement is already paid by active allocations.
type AllocationTotals interface {
	SumActiveByMovement(ctx context.Context, movementID id.ID) (types.Money, error)
}
