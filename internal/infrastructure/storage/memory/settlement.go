package memory

import (
	"context"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/settlement"
)

// AllocationRepo implements settlement.Repository.
type AllocationRepo struct{ s *Store }

var _ settlement.Repository = (*AllocationRepo)(nil)

// Allocations returns the allocation repository.
func (s *Store) Allocations() *AllocationRepo { return &AllocationRepo{s: s} }

func (r *AllocationRepo) Create(ctx context.Context, a *settlement.Allocation) error {
	return r.s.do(ctx, func() error { return r.s.allocations.insert(a) })
}

func (r *AllocationRepo) GetByID(ctx context.Context, allocationID id.ID) (a *settlement.Allocation, err error) {
	err = r.s.do(ctx, func() error {
		a, err = r.s.allocations.get(allocationID)
		return err
	})
	return a, err
}

func (r *AllocationRepo) Update(ctx context.Context, a *settlement.Allocation) error {
	return r.s.do(ctx, func() error { return r.s.allocations.update(a) })
}

func (r *AllocationRepo) ListByMovement(ctx context.Context, movementID id.ID, includeInactive bool) (items []*settlement.Allocation, err error) {
	err = r.s.do(ctx, func() error {
		items = r.s.allocations.filter(func(e *settlement.Allocation) bool {
			return (includeInactive || e.Active) && e.AccountMovementID == movementID
		})
		return nil
	})
	return items, err
}

func (r *AllocationRepo) ListByPayer(ctx context.Context, payer entity.PayerRef, includeInactive bool) (items []*settlement.Allocation, err error) {
	err = r.s.do(ctx, func() error {
		items = r.s.allocations.filter(func(e *settlement.Allocation) bool {
			return (includeInactive || e.Active) && e.Payer == payer
		})
		return nil
	})
	return items, err
}

func (r *AllocationRepo) SumActiveByMovement(ctx context.Context, movementID id.ID) (sum types.Money, err error) {
	err = r.s.do(ctx, func() error {
		sum = types.Zero()
		for _, a := range r.s.allocations.filter(func(e *settlement.Allocation) bool {
			return e.Active && e.AccountMovementID == movementID
		}) {
			sum = sum.Add(a.AllocatedAmount)
		}
		return nil
	})
	return sum, err
}
