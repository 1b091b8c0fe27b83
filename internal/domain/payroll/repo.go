package payroll

import (
	"context"

	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// AdvanceFilter narrows advance listings.
type AdvanceFilter struct {
	MemberAccountID id.ID
	SettlementID    *id.ID

	// UnsettledOnly keeps advances not yet linked to a settlement.
	UnsettledOnly   bool
	IncludeInactive bool
}

// Repository persists settlements and advances.
type Repository interface {
	CreateSettlement(ctx context.Context, s *Settlement) error
	GetSettlement(ctx context.Context, settlementID id.ID) (*Settlement, error)
	GetSettlementForUpdate(ctx context.Context, settlementID id.ID) (*Settlement, error)
	UpdateSettlement(ctx context.Context, s *Settlement) error

	// FindSettlement returns the active settlement of a member for a period or NotFound.
	FindSettlement(ctx context.Context, memberAccountID id.ID, period types.Period) (*Settlement, error)

	CreateAdvance(ctx context.Context, a *Advance) error
	GetAdvance(ctx context.Context, advanceID id.ID) (*Advance, error)
	GetAdvanceForUpdate(ctx context.Context, advanceID id.ID) (*Advance, error)
	UpdateAdvance(ctx context.Context, a *Advance) error

	// FindAdvanceByMovement returns the active advance created by a money movement or NotFound.
	FindAdvanceByMovement(ctx context.Context, movementID id.ID) (*Advance, error)

	// ListAdvances returns advances ordered by date.
	ListAdvances(ctx context.Context, filter AdvanceFilter) ([]*Advance, error)
}
