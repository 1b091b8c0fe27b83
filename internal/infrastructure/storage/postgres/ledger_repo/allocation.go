package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/settlement"
	"taxiledger/internal/infrastructure/storage/postgres"
)

type allocationRow struct {
	settlement.Allocation
	PayerKind entity.PayerKind `db:"payer_kind"`
	PayerID   id.ID            `db:"payer_id"`
}

func toAllocationRow(a *settlement.Allocation) *allocationRow {
	return &allocationRow{Allocation: *a, PayerKind: a.Payer.Kind, PayerID: a.Payer.ID}
}

func (row *allocationRow) entity() *settlement.Allocation {
	a := row.Allocation
	a.Payer = entity.PayerRef{Kind: row.PayerKind, ID: row.PayerID}
	return &a
}

// AllocationRepo implements settlement.Repository.
type AllocationRepo struct {
	baseRepo[allocationRow]
}

var _ settlement.Repository = (*AllocationRepo)(nil)

// NewAllocationRepo creates the settlement allocation repository.
func NewAllocationRepo(txm *postgres.TxManager) *AllocationRepo {
	return &AllocationRepo{
		baseRepo: newBaseRepo(txm, "settlement_allocations", "allocation",
			func(row *allocationRow) *entity.BaseEntity { return &row.BaseEntity }),
	}
}

func (r *AllocationRepo) Create(ctx context.Context, a *settlement.Allocation) error {
	return r.insert(ctx, toAllocationRow(a))
}

func (r *AllocationRepo) GetByID(ctx context.Context, allocationID id.ID) (*settlement.Allocation, error) {
	row, err := r.getOne(ctx, r.selectQ().Where(squirrel.Eq{"id": allocationID}), allocationID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *AllocationRepo) Update(ctx context.Context, a *settlement.Allocation) error {
	row := toAllocationRow(a)
	if err := r.update(ctx, row); err != nil {
		return err
	}
	a.Version, a.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *AllocationRepo) ListByMovement(ctx context.Context, movementID id.ID, includeInactive bool) ([]*settlement.Allocation, error) {
	q := r.selectQ().Where(squirrel.Eq{"account_movement_id": movementID})
	return r.list(ctx, q, includeInactive)
}

func (r *AllocationRepo) ListByPayer(ctx context.Context, payer entity.PayerRef, includeInactive bool) ([]*settlement.Allocation, error) {
	q := r.selectQ().Where(squirrel.Eq{"payer_kind": payer.Kind, "payer_id": payer.ID})
	return r.list(ctx, q, includeInactive)
}

func (r *AllocationRepo) list(ctx context.Context, q squirrel.SelectBuilder, includeInactive bool) ([]*settlement.Allocation, error) {
	if !includeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	rows, err := r.selectMany(ctx, q.OrderBy("created_at ASC", "id"))
	if err != nil {
		return nil, err
	}
	return convertAll(rows, (*allocationRow).entity), nil
}

// SumActiveByMovement totals the active allocations of a movement in SQL.
func (r *AllocationRepo) SumActiveByMovement(ctx context.Context, movementID id.ID) (types.Money, error) {
	q := Builder().
		Select("COALESCE(SUM(allocated_amount), 0)").
		From(r.tableName).
		Where(squirrel.Eq{"account_movement_id": movementID, "active": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build sum query: %w", err)
	}

	var sum types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("sum allocations: %w", err)
	}
	return sum, nil
}
