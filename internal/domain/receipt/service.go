package receipt

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/pkg/logger"
)

// AccountChecker verifies that an account exists.
type AccountChecker interface {
	Exists(ctx context.Context, ref entity.AccountRef) error
}

// AllocationChecker tells whether a payer backs allocations.
type AllocationChecker interface {
	HasActiveAllocations(ctx context.Context, payer entity.PayerRef) (bool, error)
}

// CreateInput describes a new receipt.
type CreateInput struct {
	Account       entity.AccountRef `json:"account"`
	ReceiptNumber string            `json:"receiptNumber"`
	BookletNumber string            `json:"bookletNumber"`
	ReceiptType   string            `json:"receiptType"`
	Period        types.Period      `json:"period"`
	IssueDate     types.Date        `json:"issueDate"`
}

// Service manages receipts.
type Service struct {
	repo        Repository
	accounts    AccountChecker
	allocations AllocationChecker
	txManager   tx.Manager
}

// NewService creates the receipt service.
func NewService(repo Repository, accounts AccountChecker, allocations AllocationChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:        repo,
		accounts:    accounts,
		allocations: allocations,
		txManager:   txManager,
	}
}

// Create issues a receipt. One receipt per account and period; numbering is globally unique.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Receipt, error) {
	r := &Receipt{
		BaseEntity:    entity.NewBaseEntity(),
		Account:       in.Account,
		ReceiptNumber: in.ReceiptNumber,
		BookletNumber: in.BookletNumber,
		ReceiptType:   in.ReceiptType,
		Period:        in.Period,
		IssueDate:     in.IssueDate,
	}
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.Exists(ctx, r.Account); err != nil {
			return err
		}

		if _, err := s.repo.FindByAccountPeriod(ctx, r.Account, r.Period); err == nil {
			return apperror.NewConflict("account already has a receipt for this period").
				WithDetail("account", r.Account.String()).
				WithDetail("period", string(r.Period))
		} else if !apperror.IsNotFound(err) {
			return err
		}

		if _, err := s.repo.FindByNumber(ctx, r.ReceiptNumber, r.BookletNumber, r.ReceiptType); err == nil {
			return apperror.NewDuplicate("receipt", "number", r.ReceiptNumber).
				WithDetail("bookletNumber", r.BookletNumber).
				WithDetail("receiptType", r.ReceiptType)
		} else if !apperror.IsNotFound(err) {
			return err
		}

		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "receipt issued", "receipt_id", r.ID, "account", r.Account.String(), "period", r.Period)
	return r, nil
}

// Get returns a receipt.
func (s *Service) Get(ctx context.Context, receiptID id.ID) (*Receipt, error) {
	r, err := s.repo.GetByID(ctx, receiptID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("receipt", receiptID.String())
	}
	return r, err
}

// List returns receipts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Receipt], error) {
	return s.repo.List(ctx, filter)
}

// Delete soft-deletes a receipt that backs no allocation. The receipt row lock
// orders it against allocations naming the receipt as payer.
func (s *Service) Delete(ctx context.Context, receiptID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, receiptID)
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("receipt", receiptID.String())
		}
		if err != nil {
			return err
		}
		if !r.Active {
			return apperror.NewConflict("receipt is already deleted").WithDetail("receiptId", receiptID.String())
		}

		used, err := s.allocations.HasActiveAllocations(ctx, entity.ReceiptPayer(receiptID))
		if err != nil {
			return err
		}
		if used {
			return apperror.NewImmutable("receipt backs settlement allocations").
				WithDetail("receiptId", receiptID.String())
		}

		r.Deactivate()
		return s.repo.Update(ctx, r)
	})
}

// PayerLookup resolves receipts acting as allocation payers.
type PayerLookup struct {
	repo Repository
}

// NewPayerLookup creates a payer lookup over the receipt repository.
func NewPayerLookup(repo Repository) *PayerLookup {
	return &PayerLookup{repo: repo}
}

// PayerAccount locks an active receipt and returns its account.
func (l *PayerLookup) PayerAccount(ctx context.Context, receiptID id.ID) (entity.AccountRef, error) {
	r, err := l.repo.GetForUpdate(ctx, receiptID)
	if apperror.IsNotFound(err) || (err == nil && !r.Active) {
		return entity.AccountRef{}, apperror.NewNotFound("receipt", receiptID.String())
	}
	if err != nil {
		return entity.AccountRef{}, err
	}
	return r.Account, nil
}
