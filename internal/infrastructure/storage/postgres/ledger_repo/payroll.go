package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/payroll"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// PayrollRepo implements payroll.Repository over payroll_settlements and advances.
type PayrollRepo struct {
	settlements baseRepo[payroll.Settlement]
	advances    baseRepo[payroll.Advance]
}

var _ payroll.Repository = (*PayrollRepo)(nil)

// NewPayrollRepo creates the payroll repository.
func NewPayrollRepo(txm *postgres.TxManager) *PayrollRepo {
	return &PayrollRepo{
		settlements: newBaseRepo(txm, "payroll_settlements", "payroll settlement",
			func(s *payroll.Settlement) *entity.BaseEntity { return &s.BaseEntity }),
		advances: newBaseRepo(txm, "advances", "advance",
			func(a *payroll.Advance) *entity.BaseEntity { return &a.BaseEntity }),
	}
}

func (r *PayrollRepo) CreateSettlement(ctx context.Context, s *payroll.Settlement) error {
	return r.settlements.insert(ctx, s)
}

func (r *PayrollRepo) GetSettlement(ctx context.Context, settlementID id.ID) (*payroll.Settlement, error) {
	q := r.settlements.selectQ().Where(squirrel.Eq{"id": settlementID})
	return r.settlements.getOne(ctx, q, settlementID.String())
}

func (r *PayrollRepo) GetSettlementForUpdate(ctx context.Context, settlementID id.ID) (*payroll.Settlement, error) {
	q := r.settlements.selectQ().Where(squirrel.Eq{"id": settlementID})
	return r.settlements.getForUpdate(ctx, q, settlementID.String())
}

func (r *PayrollRepo) UpdateSettlement(ctx context.Context, s *payroll.Settlement) error {
	return r.settlements.update(ctx, s)
}

func (r *PayrollRepo) FindSettlement(ctx context.Context, memberAccountID id.ID, period types.Period) (*payroll.Settlement, error) {
	q := r.settlements.selectQ().Where(squirrel.Eq{
		"member_account_id": memberAccountID,
		"period":            period,
		"active":            true,
	})
	return r.settlements.getOne(ctx, q, string(period))
}

func (r *PayrollRepo) CreateAdvance(ctx context.Context, a *payroll.Advance) error {
	return r.advances.insert(ctx, a)
}

func (r *PayrollRepo) GetAdvance(ctx context.Context, advanceID id.ID) (*payroll.Advance, error) {
	q := r.advances.selectQ().Where(squirrel.Eq{"id": advanceID})
	return r.advances.getOne(ctx, q, advanceID.String())
}

func (r *PayrollRepo) GetAdvanceForUpdate(ctx context.Context, advanceID id.ID) (*payroll.Advance, error) {
	q := r.advances.selectQ().Where(squirrel.Eq{"id": advanceID})
	return r.advances.getForUpdate(ctx, q, advanceID.String())
}

func (r *PayrollRepo) UpdateAdvance(ctx context.Context, a *payroll.Advance) error {
	return r.advances.update(ctx, a)
}

func (r *PayrollRepo) FindAdvanceByMovement(ctx context.Context, movementID id.ID) (*payroll.Advance, error) {
	q := r.advances.selectQ().Where(squirrel.Eq{"movement_id": movementID, "active": true})
	return r.advances.getOne(ctx, q, movementID.String())
}

func (r *PayrollRepo) ListAdvances(ctx context.Context, filter payroll.AdvanceFilter) ([]*payroll.Advance, error) {
	q := r.advances.selectQ()
	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if !id.IsNil(filter.MemberAccountID) {
		q = q.Where(squirrel.Eq{"member_account_id": filter.MemberAccountID})
	}
	if filter.UnsettledOnly {
		q = q.Where(squirrel.Eq{"payroll_settlement_id": nil})
	}
	if filter.SettlementID != nil {
		q = q.Where(squirrel.Eq{"payroll_settlement_id": *filter.SettlementID})
	}
	return r.advances.selectMany(ctx, q.OrderBy("advance_date ASC", "created_at ASC"))
}
