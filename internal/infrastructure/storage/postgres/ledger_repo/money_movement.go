package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/moneymovement"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// moneyMovementRow stores the optional account as a nullable column pair.
type moneyMovementRow struct {
	moneymovement.MoneyMovement
	AccountKind *entity.AccountKind `db:"account_kind"`
	AccountID   *id.ID              `db:"account_id"`
}

func toMoneyMovementRow(m *moneymovement.MoneyMovement) *moneyMovementRow {
	row := &moneyMovementRow{MoneyMovement: *m}
	if !m.Account.IsNone() {
		kind, accountID := m.Account.Kind, m.Account.ID
		row.AccountKind, row.AccountID = &kind, &accountID
	}
	return row
}

func (row *moneyMovementRow) entity() *moneymovement.MoneyMovement {
	m := row.MoneyMovement
	m.Account = entity.NoAccount()
	if row.AccountKind != nil && row.AccountID != nil {
		m.Account = entity.AccountRef{Kind: *row.AccountKind, ID: *row.AccountID}
	}
	return &m
}

// MoneyMovementRepo implements moneymovement.Repository.
type MoneyMovementRepo struct {
	baseRepo[moneyMovementRow]
}

var _ moneymovement.Repository = (*MoneyMovementRepo)(nil)

// NewMoneyMovementRepo creates the money movement repository.
func NewMoneyMovementRepo(txm *postgres.TxManager) *MoneyMovementRepo {
	return &MoneyMovementRepo{
		baseRepo: newBaseRepo(txm, "money_movements", "money movement",
			func(row *moneyMovementRow) *entity.BaseEntity { return &row.BaseEntity }),
	}
}

func (r *MoneyMovementRepo) Create(ctx context.Context, m *moneymovement.MoneyMovement) error {
	return r.insert(ctx, toMoneyMovementRow(m))
}

func (r *MoneyMovementRepo) GetByID(ctx context.Context, movementID id.ID) (*moneymovement.MoneyMovement, error) {
	row, err := r.getOne(ctx, r.selectQ().Where(squirrel.Eq{"id": movementID}), movementID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *MoneyMovementRepo) GetForUpdate(ctx context.Context, movementID id.ID) (*moneymovement.MoneyMovement, error) {
	row, err := r.getForUpdate(ctx, r.selectQ().Where(squirrel.Eq{"id": movementID}), movementID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *MoneyMovementRepo) Update(ctx context.Context, m *moneymovement.MoneyMovement) error {
	row := toMoneyMovementRow(m)
	if err := r.update(ctx, row); err != nil {
		return err
	}
	m.Version, m.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *MoneyMovementRepo) List(ctx context.Context, filter moneymovement.ListFilter) (domain.ListResult[*moneymovement.MoneyMovement], error) {
	q := r.selectQ()
	if !filter.Account.IsNone() {
		q = q.Where(whereAccount(filter.Account))
	}
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.MovementType != "" {
		q = q.Where(squirrel.Eq{"movement_type": filter.MovementType})
	}
	if !filter.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"date": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"date": filter.To})
	}

	rows, total, err := r.page(ctx, q, filter.ListFilter, "date DESC")
	if err != nil {
		return domain.ListResult[*moneymovement.MoneyMovement]{}, err
	}
	return listResult(rows, total, filter.ListFilter, (*moneyMovementRow).entity), nil
}
