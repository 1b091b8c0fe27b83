package memory

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain/fuel"
)

// FuelRepo implements fuel.Repository.
type FuelRepo struct{ s *Store }

var _ fuel.Repository = (*FuelRepo)(nil)

// Fuel returns the fuel reimbursement repository.
func (s *Store) Fuel() *FuelRepo { return &FuelRepo{s: s} }

func (r *FuelRepo) Create(ctx context.Context, f *fuel.Reimbursement) error {
	return r.s.do(ctx, func() error {
		if _, dup := r.s.fuel.find(func(e *fuel.Reimbursement) bool {
			return e.Active && e.MemberAccountID == f.MemberAccountID
		}); dup {
			return apperror.NewDuplicate("fuel reimbursement", "memberAccountId", f.MemberAccountID.String())
		}
		return r.s.fuel.insert(f)
	})
}

func (r *FuelRepo) Update(ctx context.Context, f *fuel.Reimbursement) error {
	return r.s.do(ctx, func() error { return r.s.fuel.update(f) })
}

func (r *FuelRepo) GetByMember(ctx context.Context, memberAccountID id.ID) (f *fuel.Reimbursement, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		f, ok = r.s.fuel.find(func(e *fuel.Reimbursement) bool {
			return e.Active && e.MemberAccountID == memberAccountID
		})
		if !ok {
			return apperror.NewNotFound("fuel reimbursement", memberAccountID.String())
		}
		return nil
	})
	return f, err
}

// GetByMemberForUpdate is GetByMember; the store lock serializes writers.
func (r *FuelRepo) GetByMemberForUpdate(ctx context.Context, memberAccountID id.ID) (*fuel.Reimbursement, error) {
	return r.GetByMember(ctx, memberAccountID)
}

func (r *FuelRepo) ListPending(ctx context.Context) (items []*fuel.Reimbursement, err error) {
	err = r.s.do(ctx, func() error {
		items = r.s.fuel.filter(func(e *fuel.Reimbursement) bool {
			return e.Active && e.AccumulatedAmount.IsPositive()
		})
		return nil
	})
	return items, err
}
