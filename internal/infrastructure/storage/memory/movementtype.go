package memory

import (
	"context"
	"sort"
	"strings"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/catalogs/movementtype"
)

// TypeRepo implements movementtype.Repository.
type TypeRepo struct{ s *Store }

var _ movementtype.Repository = (*TypeRepo)(nil)

// Types returns the movement type repository.
func (s *Store) Types() *TypeRepo { return &TypeRepo{s: s} }

func (r *TypeRepo) Create(ctx context.Context, t *movementtype.Type) error {
	return r.s.do(ctx, func() error { return r.s.types.insert(t) })
}

func (r *TypeRepo) GetByID(ctx context.Context, typeID id.ID) (t *movementtype.Type, err error) {
	err = r.s.do(ctx, func() error {
		t, err = r.s.types.get(typeID)
		return err
	})
	return t, err
}

func (r *TypeRepo) Update(ctx context.Context, t *movementtype.Type) error {
	return r.s.do(ctx, func() error { return r.s.types.update(t) })
}

func (r *TypeRepo) SetActive(ctx context.Context, typeID id.ID, active bool) error {
	return r.s.do(ctx, func() error {
		t, err := r.s.types.get(typeID)
		if err != nil {
			return err
		}
		t.Active = active
		return r.s.types.update(t)
	})
}

func (r *TypeRepo) List(ctx context.Context, filter domain.ListFilter) (result domain.ListResult[*movementtype.Type], err error) {
	err = r.s.do(ctx, func() error {
		items := r.s.types.filter(func(e *movementtype.Type) bool {
			return (filter.IncludeInactive || e.Active) && wanted(filter.IDs, e.ID)
		})
		if strings.TrimPrefix(filter.OrderBy, "-") == "name" {
			desc := strings.HasPrefix(filter.OrderBy, "-")
			sort.SliceStable(items, func(i, j int) bool {
				if desc {
					return items[i].Name > items[j].Name
				}
				return items[i].Name < items[j].Name
			})
		}
		result = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return result, err
}

func (r *TypeRepo) FindByName(ctx context.Context, kind movementtype.Kind, name string) (t *movementtype.Type, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		t, ok = r.s.types.find(func(e *movementtype.Type) bool {
			return e.Active && e.Kind == kind && strings.EqualFold(e.Name, name)
		})
		if !ok {
			return apperror.NewNotFound("movement type", name)
		}
		return nil
	})
	return t, err
}

func (r *TypeRepo) ListRecurring(ctx context.Context) (items []*movementtype.Type, err error) {
	err = r.s.do(ctx, func() error {
		items = r.s.types.filter(func(e *movementtype.Type) bool {
			return e.Active && e.MonthlyRecurrence
		})
		return nil
	})
	return items, err
}
