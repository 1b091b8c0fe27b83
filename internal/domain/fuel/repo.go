package fuel

import (
	"context"

	"taxiledger/internal/core/id"
)

// Repository persists fuel reimbursement records.
type Repository interface {
	Create(ctx context.Context, r *Reimbursement) error
	Update(ctx context.Context, r *Reimbursement) error

	// GetByMember returns the active record of a member account or NotFound.
	GetByMember(ctx context.Context, memberAccountID id.ID) (*Reimbursement, error)
	GetByMemberForUpdate(ctx context.Context, memberAccountID id.ID) (*Reimbursement, error)

	// ListPending returns active records with a positive accumulated amount.
	ListPending(ctx context.Context) ([]*Reimbursement, error)
}
