package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/receipt"
	"taxiledger/internal/infrastructure/storage/postgres"
)

type receiptRow struct {
	receipt.Receipt
	accountCols
}

func toReceiptRow(rc *receipt.Receipt) *receiptRow {
	return &receiptRow{Receipt: *rc, accountCols: accountColsOf(rc.Account)}
}

func (row *receiptRow) entity() *receipt.Receipt {
	rc := row.Receipt
	rc.Account = row.ref()
	return &rc
}

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct {
	baseRepo[receiptRow]
}

var _ receipt.Repository = (*ReceiptRepo)(nil)

// NewReceiptRepo creates the receipt repository.
func NewReceiptRepo(txm *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		baseRepo: newBaseRepo(txm, "receipts", "receipt",
			func(row *receiptRow) *entity.BaseEntity { return &row.BaseEntity }),
	}
}

func (r *ReceiptRepo) Create(ctx context.Context, rc *receipt.Receipt) error {
	return r.insert(ctx, toReceiptRow(rc))
}

func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	return r.find(ctx, r.selectQ().Where(squirrel.Eq{"id": receiptID}), receiptID.String())
}

func (r *ReceiptRepo) GetForUpdate(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	row, err := r.getForUpdate(ctx, r.selectQ().Where(squirrel.Eq{"id": receiptID}), receiptID.String())
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}

func (r *ReceiptRepo) Update(ctx context.Context, rc *receipt.Receipt) error {
	row := toReceiptRow(rc)
	if err := r.update(ctx, row); err != nil {
		return err
	}
	rc.Version, rc.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *ReceiptRepo) List(ctx context.Context, filter receipt.ListFilter) (domain.ListResult[*receipt.Receipt], error) {
	q := r.selectQ()
	if !filter.Account.IsNone() {
		q = q.Where(whereAccount(filter.Account))
	}
	if filter.Period != "" {
		q = q.Where(squirrel.Eq{"period": filter.Period})
	}

	rows, total, err := r.page(ctx, q, filter.ListFilter, "created_at ASC")
	if err != nil {
		return domain.ListResult[*receipt.Receipt]{}, err
	}
	return listResult(rows, total, filter.ListFilter, (*receiptRow).entity), nil
}

func (r *ReceiptRepo) FindByAccountPeriod(ctx context.Context, account entity.AccountRef, period types.Period) (*receipt.Receipt, error) {
	q := r.selectQ().
		Where(whereAccount(account)).
		Where(squirrel.Eq{"period": period, "active": true})
	return r.find(ctx, q, account.String()+"/"+string(period))
}

func (r *ReceiptRepo) FindByNumber(ctx context.Context, receiptNumber, bookletNumber, receiptType string) (*receipt.Receipt, error) {
	q := r.selectQ().Where(squirrel.Eq{
		"receipt_number": receiptNumber,
		"booklet_number": bookletNumber,
		"receipt_type":   receiptType,
		"active":         true,
	})
	return r.find(ctx, q, receiptNumber)
}

func (r *ReceiptRepo) find(ctx context.Context, q squirrel.SelectBuilder, key string) (*receipt.Receipt, error) {
	row, err := r.getOne(ctx, q, key)
	if err != nil {
		return nil, err
	}
	return row.entity(), nil
}
