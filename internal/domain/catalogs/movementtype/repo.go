package movementtype

import (
	"context"

	"taxiledger/internal/domain"
)

// Repository defines the interface for Type persistence.
type Repository interface {
	domain.CatalogRepository[*Type]

	// FindByName retrieves an active type by kind and name.
	FindByName(ctx context.Context, kind Kind, name string) (*Type, error)

	// ListRecurring returns active types with monthly recurrence.
	ListRecurring(ctx context.Context) ([]*Type, error)
}
