package movementtype

import (
	"context"
	"strings"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/domain"
)

// Service provides business logic for the type registry.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Type]
	repo Repository
}

// NewService creates a new type registry service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Type]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "movement type",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)
	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

// checkNameUnique rejects a second active type with the same kind and name.
func (s *Service) checkNameUnique(ctx context.Context, t *Type) error {
	existing, err := s.repo.FindByName(ctx, t.Kind, t.Name)
	if apperror.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != t.ID {
		return apperror.NewDuplicate("movement type", "name", t.Name).
			WithDetail("kind", string(t.Kind))
	}
	return nil
}

// Resolve returns an active type of the given kind.
func (s *Service) Resolve(ctx context.Context, typeID id.ID, kind Kind) (*Type, error) {
	t, err := s.GetByID(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, apperror.NewValidation("movement type is inactive").WithDetail("typeId", typeID.String())
	}
	if t.Kind != kind {
		return nil, apperror.NewValidation("movement type kind does not match movement").
			WithDetail("typeId", typeID.String()).
			WithDetail("expected", string(kind)).
			WithDetail("actual", string(t.Kind))
	}
	return t, nil
}

// FindByName retrieves an active type by kind and trimmed name.
func (s *Service) FindByName(ctx context.Context, kind Kind, name string) (*Type, error) {
	return s.repo.FindByName(ctx, kind, strings.TrimSpace(name))
}

// Recurring returns the active types that generate movements every period.
func (s *Service) Recurring(ctx context.Context) ([]*Type, error) {
	all, err := s.repo.ListRecurring(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Type, 0, len(all))
	for _, t := range all {
		if t.Generates() {
			out = append(out, t)
		}
	}
	return out, nil
}
