package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain/masterdata"
	"taxiledger/internal/infrastructure/storage/postgres"
)

// ownerTables maps each account kind to its owner table and display column.
var ownerTables = map[entity.AccountKind]struct {
	table   string
	display string
}{
	entity.AccountMember:     {table: "members", display: "full_name"},
	entity.AccountSubscriber: {table: "subscribers", display: "name"},
	entity.AccountVehicle:    {table: "vehicles", display: "plate"},
}

// Directory implements masterdata.Directory over the owner tables.
type Directory struct {
	txm *postgres.TxManager
}

var _ masterdata.Directory = (*Directory)(nil)

// NewDirectory creates the owner directory.
func NewDirectory(txm *postgres.TxManager) *Directory {
	return &Directory{txm: txm}
}

func (d *Directory) Lookup(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (masterdata.Owner, error) {
	src, ok := ownerTables[kind]
	if !ok {
		return masterdata.Owner{}, apperror.NewValidation("unknown account kind").WithDetail("kind", string(kind))
	}

	q := Builder().
		Select("id", src.display+" AS display_name", "active").
		From(src.table).
		Where(squirrel.Eq{"id": ownerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return masterdata.Owner{}, fmt.Errorf("build owner query: %w", err)
	}

	var row struct {
		ID          id.ID  `db:"id"`
		DisplayName string `db:"display_name"`
		Active      bool   `db:"active"`
	}
	if err := pgxscan.Get(ctx, d.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return masterdata.Owner{}, apperror.NewNotFound(string(kind), ownerID.String())
		}
		return masterdata.Owner{}, fmt.Errorf("lookup %s: %w", src.table, err)
	}

	return masterdata.Owner{
		Kind:        kind,
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Active:      row.Active,
	}, nil
}

// Register inserts an active owner row and returns its id. The seed command uses
// it to populate a development database.
func (d *Directory) Register(ctx context.Context, kind entity.AccountKind, name string) (id.ID, error) {
	src, ok := ownerTables[kind]
	if !ok {
		return id.Nil(), apperror.NewValidation("unknown account kind").WithDetail("kind", string(kind))
	}

	ownerID := id.New()
	sql, args, err := Builder().
		Insert(src.table).
		Columns("id", src.display, "active").
		Values(ownerID, name, true).
		ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build owner insert: %w", err)
	}
	if _, err := d.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return id.Nil(), postgres.TranslateError(fmt.Errorf("insert %s: %w", src.table, err), string(kind))
	}
	return ownerID, nil
}
