package moneymovement

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
)

// ListFilter narrows money movement listings. Zero values are ignored.
type ListFilter struct {
	domain.ListFilter

	Account      entity.AccountRef
	Kind         Kind
	MovementType Category
	From         types.Date
	To           types.Date
}

// Repository persists money movements.
type Repository interface {
	Create(ctx context.Context, m *MoneyMovement) error
	GetByID(ctx context.Context, movementID id.ID) (*MoneyMovement, error)
	GetForUpdate(ctx context.Context, movementID id.ID) (*MoneyMovement, error)
	Update(ctx context.Context, m *MoneyMovement) error

	// List returns movements matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*MoneyMovement], error)
}
