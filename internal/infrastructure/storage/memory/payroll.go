package memory

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/payroll"
)

// PayrollRepo implements payroll.Repository.
type PayrollRepo struct{ s *Store }

var _ payroll.Repository = (*PayrollRepo)(nil)

// Payroll returns the settlement and advance repository.
func (s *Store) Payroll() *PayrollRepo { return &PayrollRepo{s: s} }

func (r *PayrollRepo) CreateSettlement(ctx context.Context, st *payroll.Settlement) error {
	return r.s.do(ctx, func() error {
		if _, dup := r.s.settlements.find(func(e *payroll.Settlement) bool {
			return e.Active && e.MemberAccountID == st.MemberAccountID && e.Period == st.Period
		}); dup {
			return apperror.NewDuplicate("payroll settlement", "period", string(st.Period))
		}
		return r.s.settlements.insert(detached(st))
	})
}

func (r *PayrollRepo) GetSettlement(ctx context.Context, settlementID id.ID) (st *payroll.Settlement, err error) {
	err = r.s.do(ctx, func() error {
		st, err = r.s.settlements.get(settlementID)
		return err
	})
	return st, err
}

// GetSettlementForUpdate is GetSettlement; the store lock serializes writers.
func (r *PayrollRepo) GetSettlementForUpdate(ctx context.Context, settlementID id.ID) (*payroll.Settlement, error) {
	return r.GetSettlement(ctx, settlementID)
}

func (r *PayrollRepo) UpdateSettlement(ctx context.Context, st *payroll.Settlement) error {
	return r.s.do(ctx, func() error {
		row := detached(st)
		if err := r.s.settlements.update(row); err != nil {
			return err
		}
		st.Version, st.UpdatedAt = row.Version, row.UpdatedAt
		return nil
	})
}

func (r *PayrollRepo) FindSettlement(ctx context.Context, memberAccountID id.ID, period types.Period) (st *payroll.Settlement, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		st, ok = r.s.settlements.find(func(e *payroll.Settlement) bool {
			return e.Active && e.MemberAccountID == memberAccountID && e.Period == period
		})
		if !ok {
			return apperror.NewNotFound("payroll settlement", string(period))
		}
		return nil
	})
	return st, err
}

func (r *PayrollRepo) CreateAdvance(ctx context.Context, a *payroll.Advance) error {
	return r.s.do(ctx, func() error { return r.s.advances.insert(a) })
}

func (r *PayrollRepo) GetAdvance(ctx context.Context, advanceID id.ID) (a *payroll.Advance, err error) {
	err = r.s.do(ctx, func() error {
		a, err = r.s.advances.get(advanceID)
		return err
	})
	return a, err
}

// GetAdvanceForUpdate is GetAdvance; the store lock serializes writers.
func (r *PayrollRepo) GetAdvanceForUpdate(ctx context.Context, advanceID id.ID) (*payroll.Advance, error) {
	return r.GetAdvance(ctx, advanceID)
}

func (r *PayrollRepo) UpdateAdvance(ctx context.Context, a *payroll.Advance) error {
	return r.s.do(ctx, func() error { return r.s.advances.update(a) })
}

func (r *PayrollRepo) FindAdvanceByMovement(ctx context.Context, movementID id.ID) (a *payroll.Advance, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		a, ok = r.s.advances.find(func(e *payroll.Advance) bool {
			return e.Active && e.MovementID != nil && *e.MovementID == movementID
		})
		if !ok {
			return apperror.NewNotFound("advance", movementID.String())
		}
		return nil
	})
	return a, err
}

func (r *PayrollRepo) ListAdvances(ctx context.Context, filter payroll.AdvanceFilter) (items []*payroll.Advance, err error) {
	err = r.s.do(ctx, func() error {
		items = r.s.advances.filter(func(e *payroll.Advance) bool {
			switch {
			case !filter.IncludeInactive && !e.Active:
				return false
			case !id.IsNil(filter.MemberAccountID) && e.MemberAccountID != filter.MemberAccountID:
				return false
			case filter.UnsettledOnly && e.Settled():
				return false
			case filter.SettlementID != nil && (e.PayrollSettlementID == nil || *e.PayrollSettlementID != *filter.SettlementID):
				return false
			}
			return true
		})
		sortByDate(items, func(a *payroll.Advance) types.Date { return a.Date })
		return nil
	})
	return items, err
}

// detached copies a settlement without its loaded advances.
func detached(st *payroll.Settlement) *payroll.Settlement {
	row := *st
	row.Advances = nil
	return &row
}
