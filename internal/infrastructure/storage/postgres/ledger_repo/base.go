// Package ledger_repo provides PostgreSQL implementations of the ledger repositories.
// All repositories resolve their querier from the transaction stored in ctx,
// so the services' RunInTransaction boundaries hold across tables.
package ledger_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// immutableCols are never written by Update.
var immutableCols = map[string]struct{}{
	"id":         {},
	"version":    {},
	"created_at": {},
	"updated_at": {},
}

// baseRepo provides the common statements of a table whose rows scan into R.
// R is either the domain entity itself or a row struct embedding it.
type baseRepo[R any] struct {
	txm       *postgres.TxManager
	tableName string
	entity    string
	cols      []string
	base      func(*R) *entity.BaseEntity
}

func newBaseRepo[R any](txm *postgres.TxManager, tableName, entityName string, base func(*R) *entity.BaseEntity) baseRepo[R] {
	return baseRepo[R]{
		txm:       txm,
		tableName: tableName,
		entity:    entityName,
		cols:      postgres.ExtractDBColumns[R](),
		base:      base,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r baseRepo[R]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r baseRepo[R]) selectQ() squirrel.SelectBuilder {
	return Builder().Select(r.cols...).From(r.tableName)
}

// insert writes every tagged column of row.
func (r baseRepo[R]) insert(ctx context.Context, row *R) error {
	q := Builder().Insert(r.tableName).SetMap(r.columnMap(row, nil))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entity)
	}
	return nil
}

// update rewrites the mutable columns when the stored version matches and
// advances the caller's version and updated_at on success.
func (r baseRepo[R]) update(ctx context.Context, row *R) error {
	b := r.base(row)
	now := time.Now().UTC()

	q := Builder().
		Update(r.tableName).
		SetMap(r.columnMap(row, immutableCols)).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": b.ID}).
		Where(squirrel.Eq{"version": b.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(fmt.Errorf("update %s: %w", r.tableName, err), r.entity)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entity, b.ID.String())
	}

	b.Version++
	b.UpdatedAt = now
	return nil
}

func (r baseRepo[R]) columnMap(row *R, skip map[string]struct{}) map[string]any {
	data := postgres.StructToMap(row)
	out := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if _, ok := skip[col]; ok {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}

// getOne runs q and scans a single row; key names the lookup in NotFound errors.
func (r baseRepo[R]) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*R, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := new(R)
	if err := pgxscan.Get(ctx, r.querier(ctx), row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return row, nil
}

// getForUpdate is getOne holding a row lock until the transaction ends.
func (r baseRepo[R]) getForUpdate(ctx context.Context, q squirrel.SelectBuilder, key string) (*R, error) {
	return r.getOne(ctx, q.Suffix("FOR UPDATE"), key)
}

func (r baseRepo[R]) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*R, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]*R, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return rows, nil
}

// page applies the common list filter to q, counts the matches and returns one page.
func (r baseRepo[R]) page(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter, defaultOrder string) ([]*R, int64, error) {
	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	countSQL, countArgs, err := Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy, defaultOrder)
	if err != nil {
		return nil, 0, err
	}
	q = q.OrderBy(orderBy, "id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	rows, err := r.selectMany(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// parseOrderBy turns "field" or "-field" into an ORDER BY term over known columns.
func (r baseRepo[R]) parseOrderBy(orderBy, fallback string) (string, error) {
	if orderBy == "" {
		return fallback, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}
	field = strings.TrimSpace(field)

	for _, col := range r.cols {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").
		WithDetail("orderBy", orderBy).
		WithDetail("field", field)
}

// listResult converts a page of rows into domain entities.
func listResult[R, T any](rows []*R, total int64, filter domain.ListFilter, conv func(*R) T) domain.ListResult[T] {
	items := make([]T, len(rows))
	for i, row := range rows {
		items[i] = conv(row)
	}
	return domain.ListResult[T]{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
}

func convertAll[R, T any](rows []*R, conv func(*R) T) []T {
	items := make([]T, len(rows))
	for i, row := range rows {
		items[i] = conv(row)
	}
	return items
}

func identity[T any](row *T) *T { return row }

// accountCols holds the account_kind/account_id pair of tables with a mandatory account.
type accountCols struct {
	AccountKind entity.AccountKind `db:"account_kind"`
	AccountID   id.ID              `db:"account_id"`
}

func (c accountCols) ref() entity.AccountRef {
	return entity.AccountRef{Kind: c.AccountKind, ID: c.AccountID}
}

func accountColsOf(ref entity.AccountRef) accountCols {
	return accountCols{AccountKind: ref.Kind, AccountID: ref.ID}
}

// whereAccount matches rows of one account.
func whereAccount(ref entity.AccountRef) squirrel.Eq {
	return squirrel.Eq{"account_kind": ref.Kind, "account_id": ref.ID}
}
