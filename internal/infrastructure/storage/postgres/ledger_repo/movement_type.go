package ledger_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// MovementTypeRepo implements movementtype.Repository.
type MovementTypeRepo struct {
	baseRepo[movementtype.Type]
}

var _ movementtype.Repository = (*MovementTypeRepo)(nil)

// NewMovementTypeRepo creates the movement type repository.
func NewMovementTypeRepo(txm *postgres.TxManager) *MovementTypeRepo {
	return &MovementTypeRepo{
		baseRepo: newBaseRepo(txm, "movement_types", "movement type",
			func(t *movementtype.Type) *entity.BaseEntity { return &t.BaseEntity }),
	}
}

func (r *MovementTypeRepo) Create(ctx context.Context, t *movementtype.Type) error {
	return r.insert(ctx, t)
}

func (r *MovementTypeRepo) GetByID(ctx context.Context, typeID id.ID) (*movementtype.Type, error) {
	return r.getOne(ctx, r.selectQ().Where(squirrel.Eq{"id": typeID}), typeID.String())
}

func (r *MovementTypeRepo) Update(ctx context.Context, t *movementtype.Type) error {
	return r.update(ctx, t)
}

// SetActive soft-deletes or restores a type without touching its other columns.
func (r *MovementTypeRepo) SetActive(ctx context.Context, typeID id.ID, active bool) error {
	q := Builder().
		Update(r.tableName).
		Set("active", active).
		Set("updated_at", time.Now().UTC()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": typeID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set active: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(fmt.Errorf("set active %s: %w", r.tableName, err), r.entity)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, typeID.String())
	}
	return nil
}

func (r *MovementTypeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*movementtype.Type], error) {
	rows, total, err := r.page(ctx, r.selectQ(), filter, "created_at ASC")
	if err != nil {
		return domain.ListResult[*movementtype.Type]{}, err
	}
	return listResult(rows, total, filter, identity[movementtype.Type]), nil
}

func (r *MovementTypeRepo) FindByName(ctx context.Context, kind movementtype.Kind, name string) (*movementtype.Type, error) {
	q := r.selectQ().
		Where(squirrel.Eq{"kind": kind, "active": true}).
		Where(squirrel.Expr("lower(name) = ?", strings.ToLower(strings.TrimSpace(name))))
	return r.getOne(ctx, q, name)
}

func (r *MovementTypeRepo) ListRecurring(ctx context.Context) ([]*movementtype.Type, error) {
	q := r.selectQ().
		Where(squirrel.Eq{"active": true, "monthly_recurrence": true}).
		OrderBy("created_at", "id")
	return r.selectMany(ctx, q)
}
