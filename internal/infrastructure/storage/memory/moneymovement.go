package memory

import (
	"context"
	"sort"

	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/moneymovement"
)

// MoneyRepo implements moneymovement.Repository.
type MoneyRepo struct{ s *Store }

var _ moneymovement.Repository = (*MoneyRepo)(nil)

// MoneyMovements returns the money movement repository.
func (s *Store) MoneyMovements() *MoneyRepo { return &MoneyRepo{s: s} }

func (r *MoneyRepo) Create(ctx context.Context, m *moneymovement.MoneyMovement) error {
	return r.s.do(ctx, func() error { return r.s.money.insert(m) })
}

func (r *MoneyRepo) GetByID(ctx context.Context, movementID id.ID) (m *moneymovement.MoneyMovement, err error) {
	err = r.s.do(ctx, func() error {
		m, err = r.s.money.get(movementID)
		return err
	})
	return m, err
}

// GetForUpdate is GetByID; the store lock serializes writers.
func (r *MoneyRepo) GetForUpdate(ctx context.Context, movementID id.ID) (*moneymovement.MoneyMovement, error) {
	return r.GetByID(ctx, movementID)
}

func (r *MoneyRepo) Update(ctx context.Context, m *moneymovement.MoneyMovement) error {
	return r.s.do(ctx, func() error { return r.s.money.update(m) })
}

func (r *MoneyRepo) List(ctx context.Context, filter moneymovement.ListFilter) (result domain.ListResult[*moneymovement.MoneyMovement], err error) {
	err = r.s.do(ctx, func() error {
		items := r.s.money.filter(func(e *moneymovement.MoneyMovement) bool {
			switch {
			case !filter.IncludeInactive && !e.Active:
				return false
			case !filter.Account.IsNone() && e.Account != filter.Account:
				return false
			case filter.Kind != "" && e.Kind != filter.Kind:
				return false
			case filter.MovementType != "" && e.MovementType != filter.MovementType:
				return false
			case !filter.From.IsZero() && e.Date.Before(filter.From):
				return false
			case !filter.To.IsZero() && e.Date.After(filter.To):
				return false
			}
			return wanted(filter.IDs, e.ID)
		})
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
		result = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return result, err
}
