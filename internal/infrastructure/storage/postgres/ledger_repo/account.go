package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/ledger"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// AccountRepo implements ledger.Repository.
type AccountRepo struct {
	baseRepo[ledger.Account]
}

var _ ledger.Repository = (*AccountRepo)(nil)

// NewAccountRepo creates the account repository.
func NewAccountRepo(txm *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		baseRepo: newBaseRepo(txm, "accounts", "account",
			func(a *ledger.Account) *entity.BaseEntity { return &a.BaseEntity }),
	}
}

func (r *AccountRepo) Create(ctx context.Context, a *ledger.Account) error {
	return r.insert(ctx, a)
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*ledger.Account, error) {
	return r.getOne(ctx, r.selectQ().Where(squirrel.Eq{"id": accountID}), accountID.String())
}

func (r *AccountRepo) GetForUpdate(ctx context.Context, accountID id.ID) (*ledger.Account, error) {
	return r.getForUpdate(ctx, r.selectQ().Where(squirrel.Eq{"id": accountID}), accountID.String())
}

func (r *AccountRepo) GetByOwner(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (*ledger.Account, error) {
	q := r.selectQ().Where(squirrel.Eq{"kind": kind, "owner_id": ownerID, "active": true})
	return r.getOne(ctx, q, ownerID.String())
}

func (r *AccountRepo) Update(ctx context.Context, a *ledger.Account) error {
	return r.update(ctx, a)
}

func (r *AccountRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[*ledger.Account], error) {
	q := r.selectQ()
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	rows, total, err := r.page(ctx, q, filter.ListFilter, "created_at ASC")
	if err != nil {
		return domain.ListResult[*ledger.Account]{}, err
	}
	return listResult(rows, total, filter.ListFilter, identity[ledger.Account]), nil
}
