package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain/fuel"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// FuelRepo implements fuel.Repository.
type FuelRepo struct {
	baseRepo[fuel.Reimbursement]
}

var _ fuel.Repository = (*FuelRepo)(nil)

// NewFuelRepo creates the fuel reimbursement repository.
func NewFuelRepo(txm *postgres.TxManager) *FuelRepo {
	return &FuelRepo{
		baseRepo: newBaseRepo(txm, "fuel_reimbursements", "fuel reimbursement",
			func(f *fuel.Reimbursement) *entity.BaseEntity { return &f.BaseEntity }),
	}
}

func (r *FuelRepo) Create(ctx context.Context, f *fuel.Reimbursement) error {
	return r.insert(ctx, f)
}

func (r *FuelRepo) Update(ctx context.Context, f *fuel.Reimbursement) error {
	return r.update(ctx, f)
}

func (r *FuelRepo) GetByMember(ctx context.Context, memberAccountID id.ID) (*fuel.Reimbursement, error) {
	return r.getOne(ctx, r.byMember(memberAccountID), memberAccountID.String())
}

func (r *FuelRepo) GetByMemberForUpdate(ctx context.Context, memberAccountID id.ID) (*fuel.Reimbursement, error) {
	return r.getForUpdate(ctx, r.byMember(memberAccountID), memberAccountID.String())
}

func (r *FuelRepo) ListPending(ctx context.Context) ([]*fuel.Reimbursement, error) {
	q := r.selectQ().
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Gt{"accumulated_amount": 0}).
		OrderBy("created_at ASC", "id")
	return r.selectMany(ctx, q)
}

func (r *FuelRepo) byMember(memberAccountID id.ID) squirrel.SelectBuilder {
	return r.selectQ().Where(squirrel.Eq{"member_account_id": memberAccountID, "active": true})
}
