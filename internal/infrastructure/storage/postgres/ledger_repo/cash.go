package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/registers/cash"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// CashRepo implements cash.Repository over the cash_registers and cash_days tables.
type CashRepo struct {
	registers baseRepo[cash.Register]
	days      baseRepo[cash.DayHistory]
}

var _ cash.Repository = (*CashRepo)(nil)

// NewCashRepo creates the cash register repository.
func NewCashRepo(txm *postgres.TxManager) *CashRepo {
	return &CashRepo{
		registers: newBaseRepo(txm, "cash_registers", "cash register",
			func(r *cash.Register) *entity.BaseEntity { return &r.BaseEntity }),
		days: newBaseRepo(txm, "cash_days", "cash day",
			func(d *cash.DayHistory) *entity.BaseEntity { return &d.BaseEntity }),
	}
}

func (r *CashRepo) CreateRegister(ctx context.Context, reg *cash.Register) error {
	return r.registers.insert(ctx, reg)
}

func (r *CashRepo) GetRegister(ctx context.Context) (*cash.Register, error) {
	q := r.registers.selectQ().Where(squirrel.Eq{"id": cash.RegisterID})
	return r.registers.getOne(ctx, q, cash.RegisterID.String())
}

func (r *CashRepo) GetRegisterForUpdate(ctx context.Context) (*cash.Register, error) {
	q := r.registers.selectQ().Where(squirrel.Eq{"id": cash.RegisterID})
	return r.registers.getForUpdate(ctx, q, cash.RegisterID.String())
}

func (r *CashRepo) UpdateRegister(ctx context.Context, reg *cash.Register) error {
	return r.registers.update(ctx, reg)
}

func (r *CashRepo) CreateDay(ctx context.Context, d *cash.DayHistory) error {
	return r.days.insert(ctx, d)
}

func (r *CashRepo) GetDay(ctx context.Context, date types.Date) (*cash.DayHistory, error) {
	q := r.days.selectQ().Where(squirrel.Eq{"date": date, "active": true})
	return r.days.getOne(ctx, q, date.String())
}

func (r *CashRepo) UpdateDay(ctx context.Context, d *cash.DayHistory) error {
	return r.days.update(ctx, d)
}

func (r *CashRepo) ListDays(ctx context.Context, from, to types.Date) ([]*cash.DayHistory, error) {
	q := r.days.selectQ().Where(squirrel.Eq{"active": true})
	if !from.IsZero() {
		q = q.Where(squirrel.GtOrEq{"date": from})
	}
	if !to.IsZero() {
		q = q.Where(squirrel.LtOrEq{"date": to})
	}
	return r.days.selectMany(ctx, q.OrderBy("date ASC"))
}
