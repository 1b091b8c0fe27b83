package settlement

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// Repository persists allocations.
type Repository interface {
	Create(ctx context.Context, a *Allocation) error
	GetByID(ctx context.Context, allocationID id.ID) (*Allocation, error)
	Update(ctx context.Context, a *Allocation) error

	// ListByMovement returns allocations of an account movement, oldest first.
	ListByMovement(ctx context.Context, movementID id.ID, includeInactive bool) ([]*Allocation, error)

	// ListByPayer returns allocations paid by payer, oldest first.
	ListByPayer(ctx context.Context, payer entity.PayerRef, includeInactive bool) ([]*Allocation, error)

	// SumActiveByMovement returns the total of active allocations of a movement.
	SumActiveByMovement(ctx context.Context, movementID id.ID) (types.Money, error)
}

// PayerLookup resolves payer instruments of one kind.
type PayerLookup interface {
	// PayerAccount returns the account the payer belongs to (zero when none),
	// or NotFound when the payer does not exist or is inactive.
	PayerAccount(ctx context.Context, payerID id.ID) (entity.AccountRef, error)
}

// Payers maps each payer kind to its lookup.
type Payers map[entity.PayerKind]PayerLookup
