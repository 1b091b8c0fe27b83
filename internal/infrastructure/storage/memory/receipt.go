package memory

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/receipt"
)

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct{ s *Store }

var _ receipt.Repository = (*ReceiptRepo)(nil)

// Receipts returns the receipt repository.
func (s *Store) Receipts() *ReceiptRepo { return &ReceiptRepo{s: s} }

func (r *ReceiptRepo) Create(ctx context.Context, rc *receipt.Receipt) error {
	return r.s.do(ctx, func() error { return r.s.receipts.insert(rc) })
}

func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (rc *receipt.Receipt, err error) {
	err = r.s.do(ctx, func() error {
		rc, err = r.s.receipts.get(receiptID)
		return err
	})
	return rc, err
}

// GetForUpdate is GetByID; the store lock serializes writers.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	return r.GetByID(ctx, receiptID)
}

func (r *ReceiptRepo) Update(ctx context.Context, rc *receipt.Receipt) error {
	return r.s.do(ctx, func() error { return r.s.receipts.update(rc) })
}

func (r *ReceiptRepo) List(ctx context.Context, filter receipt.ListFilter) (result domain.ListResult[*receipt.Receipt], err error) {
	err = r.s.do(ctx, func() error {
		items := r.s.receipts.filter(func(e *receipt.Receipt) bool {
			return (filter.IncludeInactive || e.Active) &&
				(filter.Account.IsNone() || e.Account == filter.Account) &&
				(filter.Period == "" || e.Period == filter.Period) &&
				wanted(filter.IDs, e.ID)
		})
		result = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return result, err
}

func (r *ReceiptRepo) FindByAccountPeriod(ctx context.Context, account entity.AccountRef, period types.Period) (*receipt.Receipt, error) {
	return r.findOne(ctx, account.String(), func(e *receipt.Receipt) bool {
		return e.Account == account && e.Period == period
	})
}

func (r *ReceiptRepo) FindByNumber(ctx context.Context, receiptNumber, bookletNumber, receiptType string) (*receipt.Receipt, error) {
	return r.findOne(ctx, receiptNumber, func(e *receipt.Receipt) bool {
		return e.ReceiptNumber == receiptNumber && e.BookletNumber == bookletNumber && e.ReceiptType == receiptType
	})
}

func (r *ReceiptRepo) findOne(ctx context.Context, key string, match func(*receipt.Receipt) bool) (rc *receipt.Receipt, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		rc, ok = r.s.receipts.find(func(e *receipt.Receipt) bool { return e.Active && match(e) })
		if !ok {
			return apperror.NewNotFound("receipt", key)
		}
		return nil
	})
	return rc, err
}
