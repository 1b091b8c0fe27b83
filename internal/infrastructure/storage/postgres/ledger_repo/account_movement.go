package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/infrastructure/storage/postgres"
)

type accountMovementRow struct {
	accountmovement.AccountMovement
	accountCols
}

func toAccountMovementRow(m *accountmovement.AccountMovement) *accountMovementRow {
	return &accountMovementRow{AccountMovement: *m, accountCols: accountColsOf(m.Account)}
}

func (row *accountMovementRow) entity() *accountmovement.AccountMovement {
	m := row.AccountMovement
	m.Account = row.ref()
	return &m
}

// AccountMovementRepo implements accountmovement.Repository.
type AccountMovementRepo struct {
	baseRepo[accountMovementRow]
}

var _ accountmovement.Repository = (*AccountMovementRepo)(nil)

// NewAccountMovementRepo creates the account movement repository.
func NewAccountMovementRepo(txm *postgres.TxManager) *AccountMovementRepo {
	return &AccountMovementRepo{
		baseRepo: newBaseRepo(txm, "account_movements", "account movement",
			func(row *accountMovementRow) *entity.BaseEntity { return &row.BaseEntity }),
	}
}

func (r *AccountMovementRepo) Create(ctx context.Context, m *accountmovement.AccountMovement) error {
	return r.insert(ctx, toAccountMovementRow(m))
}

func (r *AccountMovementRepo) GetByID(ctx context.Context, movementID id.ID) (*accountmovement.AccountMovement, error) {
	row, err := r.getOne(ctx, r.selectQ().Where(squirrel.Eq{"id": movementID}), movementID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *AccountMovementRepo) GetForUpdate(ctx context.Context, movementID id.ID) (*accountmovement.AccountMovement, error) {
	row, err := r.getForUpdate(ctx, r.selectQ().Where(squirrel.Eq{"id": movementID}), movementID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *AccountMovementRepo) Update(ctx context.Context, m *accountmovement.AccountMovement) error {
	row := toAccountMovementRow(m)
	if err := r.update(ctx, row); err != nil {
		return err
	}
	m.Version, m.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *AccountMovementRepo) List(ctx context.Context, filter accountmovement.ListFilter) (domain.ListResult[*accountmovement.AccountMovement], error) {
	q := r.selectQ()
	if !filter.Account.IsNone() {
		q = q.Where(whereAccount(filter.Account))
	}
	if filter.Period != "" {
		q = q.Where(squirrel.Eq{"period": filter.Period})
	}
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.TypeID != nil {
		q = q.Where(squirrel.Eq{"type_id": *filter.TypeID})
	}
	if filter.Added != nil {
		q = q.Where(squirrel.Eq{"added": *filter.Added})
	}

	rows, total, err := r.page(ctx, q, filter.ListFilter, "period DESC")
	if err != nil {
		return domain.ListResult[*accountmovement.AccountMovement]{}, err
	}
	return listResult(rows, total, filter.ListFilter, (*accountMovementRow).entity), nil
}

func (r *AccountMovementRepo) ExistsRecurring(ctx context.Context, account entity.AccountRef, period types.Period, typeID id.ID) (bool, error) {
	q := Builder().
		Select("1").
		From(r.tableName).
		Where(whereAccount(account)).
		Where(squirrel.Eq{"period": period, "type_id": typeID, "active": true, "recurring": true}).
		Prefix("SELECT EXISTS (").
		Suffix(")")

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists recurring: %w", err)
	}
	return exists, nil
}
