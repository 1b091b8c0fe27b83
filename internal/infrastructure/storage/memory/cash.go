package memory

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/registers/cash"
)

// CashRepo implements cash.Repository.
type CashRepo struct{ s *Store }

var _ cash.Repository = (*CashRepo)(nil)

// Cash returns the cash register repository.
func (s *Store) Cash() *CashRepo { return &CashRepo{s: s} }

func (r *CashRepo) CreateRegister(ctx context.Context, reg *cash.Register) error {
	return r.s.do(ctx, func() error { return r.s.registers.insert(reg) })
}

func (r *CashRepo) GetRegister(ctx context.Context) (reg *cash.Register, err error) {
	err = r.s.do(ctx, func() error {
		reg, err = r.s.registers.get(cash.RegisterID)
		return err
	})
	return reg, err
}

// GetRegisterForUpdate is GetRegister; the store lock serializes writers.
func (r *CashRepo) GetRegisterForUpdate(ctx context.Context) (*cash.Register, error) {
	return r.GetRegister(ctx)
}

func (r *CashRepo) UpdateRegister(ctx context.Context, reg *cash.Register) error {
	return r.s.do(ctx, func() error { return r.s.registers.update(reg) })
}

func (r *CashRepo) CreateDay(ctx context.Context, d *cash.DayHistory) error {
	return r.s.do(ctx, func() error {
		if _, dup := r.s.cashDays.find(func(e *cash.DayHistory) bool { return e.Date.Equal(d.Date) }); dup {
			return apperror.NewDuplicate("cash day", "date", d.Date.String())
		}
		return r.s.cashDays.insert(d)
	})
}

func (r *CashRepo) GetDay(ctx context.Context, date types.Date) (d *cash.DayHistory, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		d, ok = r.s.cashDays.find(func(e *cash.DayHistory) bool { return e.Active && e.Date.Equal(date) })
		if !ok {
			return apperror.NewNotFound("cash day", date.String())
		}
		return nil
	})
	return d, err
}

func (r *CashRepo) UpdateDay(ctx context.Context, d *cash.DayHistory) error {
	return r.s.do(ctx, func() error { return r.s.cashDays.update(d) })
}

func (r *CashRepo) ListDays(ctx context.Context, from, to types.Date) (days []*cash.DayHistory, err error) {
	err = r.s.do(ctx, func() error {
		days = r.s.cashDays.filter(func(e *cash.DayHistory) bool {
			return e.Active &&
				(from.IsZero() || !e.Date.Before(from)) &&
				(to.IsZero() || !e.Date.After(to))
		})
		sortByDate(days, func(d *cash.DayHistory) types.Date { return d.Date })
		return nil
	})
	return days, err
}
