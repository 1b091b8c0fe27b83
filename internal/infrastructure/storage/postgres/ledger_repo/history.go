package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/history"
	"taxiledger/internal/infrastructure/storage/postgres"
)

type historyRow struct {
	history.AccountHistory
	accountCols
}

func toHistoryRow(h *history.AccountHistory) *historyRow {
	return &historyRow{AccountHistory: *h, accountCols: accountColsOf(h.Account)}
}

func (row *historyRow) entity() *history.AccountHistory {
	h := row.AccountHistory
	h.Account = row.ref()
	return &h
}

// HistoryRepo implements history.Repository.
type HistoryRepo struct {
	baseRepo[historyRow]
}

var _ history.Repository = (*HistoryRepo)(nil)

// NewHistoryRepo creates the account history repository.
func NewHistoryRepo(txm *postgres.TxManager) *HistoryRepo {
	return &HistoryRepo{
		baseRepo: newBaseRepo(txm, "account_histories", "account history",
			func(row *historyRow) *entity.BaseEntity { return &row.BaseEntity }),
	}
}

func (r *HistoryRepo) Create(ctx context.Context, h *history.AccountHistory) error {
	return r.insert(ctx, toHistoryRow(h))
}

func (r *HistoryRepo) GetByID(ctx context.Context, historyID id.ID) (*history.AccountHistory, error) {
	row, err := r.getOne(ctx, r.selectQ().Where(squirrel.Eq{"id": historyID}), historyID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *HistoryRepo) Update(ctx context.Context, h *history.AccountHistory) error {
	row := toHistoryRow(h)
	if err := r.update(ctx, row); err != nil {
		return err
	}
	h.Version, h.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *HistoryRepo) Find(ctx context.Context, account entity.AccountRef, period types.Period) (*history.AccountHistory, error) {
	q := r.selectQ().
		Where(whereAccount(account)).
		Where(squirrel.Eq{"period": period, "active": true})
	row, err := r.getOne(ctx, q, string(period))
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *HistoryRepo) ListByAccount(ctx context.Context, account entity.AccountRef) ([]*history.AccountHistory, error) {
	q := r.selectQ().
		Where(whereAccount(account)).
		Where(squirrel.Eq{"active": true}).
		OrderBy("period ASC")
	rows, err := r.selectMany(ctx, q)
	if err != nil {
		return nil, err
	}
	return convertAll(rows, (*historyRow).entity), nil
}
