package memory

import (
	"context"
	"sort"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/accountmovement"
)

// MovementRepo implements accountmovement.Repository.
type MovementRepo struct{ s *Store }

var _ accountmovement.Repository = (*MovementRepo)(nil)

// Movements returns the account movement repository.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) Create(ctx context.Context, m *accountmovement.AccountMovement) error {
	return r.s.do(ctx, func() error {
		if m.Recurring && m.TypeID != nil && r.existsRecurring(m.Account, m.Period, *m.TypeID) {
			return apperror.NewConflict("recurring movement already exists for this period").
				WithDetail("account", m.Account.String()).
				WithDetail("period", string(m.Period))
		}
		return r.s.movements.insert(m)
	})
}

func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (m *accountmovement.AccountMovement, err error) {
	err = r.s.do(ctx, func() error {
		m, err = r.s.movements.get(movementID)
		return err
	})
	return m, err
}

// GetForUpdate is GetByID; the store lock serializes writers.
func (r *MovementRepo) GetForUpdate(ctx context.Context, movementID id.ID) (*accountmovement.AccountMovement, error) {
	return r.GetByID(ctx, movementID)
}

func (r *MovementRepo) Update(ctx context.Context, m *accountmovement.AccountMovement) error {
	return r.s.do(ctx, func() error { return r.s.movements.update(m) })
}

func (r *MovementRepo) List(ctx context.Context, filter accountmovement.ListFilter) (result domain.ListResult[*accountmovement.AccountMovement], err error) {
	err = r.s.do(ctx, func() error {
		items := r.s.movements.filter(func(e *accountmovement.AccountMovement) bool {
			switch {
			case !filter.IncludeInactive && !e.Active:
				return false
			case !filter.Account.IsNone() && e.Account != filter.Account:
				return false
			case filter.Period != "" && e.Period != filter.Period:
				return false
			case filter.Kind != "" && e.Kind != filter.Kind:
				return false
			case filter.TypeID != nil && (e.TypeID == nil || *e.TypeID != *filter.TypeID):
				return false
			case filter.Added != nil && e.Added != *filter.Added:
				return false
			}
			return wanted(filter.IDs, e.ID)
		})
		sort.SliceStable(items, func(i, j int) bool { return items[i].Period > items[j].Period })
		result = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return result, err
}

func (r *MovementRepo) ExistsRecurring(ctx context.Context, account entity.AccountRef, period types.Period, typeID id.ID) (exists bool, err error) {
	err = r.s.do(ctx, func() error {
		exists = r.existsRecurring(account, period, typeID)
		return nil
	})
	return exists, err
}

func (r *MovementRepo) existsRecurring(account entity.AccountRef, period types.Period, typeID id.ID) bool {
	_, ok := r.s.movements.find(func(e *accountmovement.AccountMovement) bool {
		return e.Active && e.Recurring && e.Account == account && e.Period == period &&
			e.TypeID != nil && *e.TypeID == typeID
	})
	return ok
}
