package ledger

import (
	"context"
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/masterdata"
	"taxiledger/pkg/logger"
)

// Service manages account balances.
type Service struct {
	repo      Repository
	owners    masterdata.Directory
	txManager tx.Manager
}

// NewService creates the account ledger service.
func NewService(repo Repository, owners masterdata.Directory, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		owners:    owners,
		txManager: txManager,
	}
}

// OpenAccount creates the single account of an existing owner.
func (s *Service) OpenAccount(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (*Account, error) {
	account := NewAccount(kind, ownerID)
	if err := account.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := masterdata.Exists(ctx, s.owners, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lookup owner: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound(string(kind), ownerID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByOwner(ctx, kind, ownerID)
		if err == nil && existing != nil {
			return apperror.NewDuplicate("account", "owner", ownerID.String()).
				WithDetail("kind", string(kind))
		}
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		return s.repo.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "account opened", "account", account.Ref().String(), "owner_id", ownerID)
	return account, nil
}

// AdjustBalance applies a signed delta to the referenced account and returns the new balance.
// No bounds check: negative balances surface debts.
func (s *Service) AdjustBalance(ctx context.Context, ref entity.AccountRef, delta types.Money, date types.Date) (types.Money, error) {
	var balance types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		account, err := s.resolve(ctx, ref, true)
		if err != nil {
			return err
		}
		account.Apply(delta, date)
		if err := s.repo.Update(ctx, account); err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		balance = account.Balance
		return nil
	})
	if err != nil {
		return types.Zero(), err
	}

	logger.Debug(ctx, "balance adjusted", "account", ref.String(), "delta", delta.String(), "balance", balance.String())
	return balance, nil
}

// Correct overwrites the balance as an administrative correction.
func (s *Service) Correct(ctx context.Context, ref entity.AccountRef, newBalance types.Money, date types.Date, reason string) (*Account, error) {
	if reason == "" {
		return nil, apperror.NewValidation("correction reason is required").WithDetail("field", "reason")
	}

	var (
		account  *Account
		previous types.Money
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.resolve(ctx, ref, true)
		if err != nil {
			return err
		}
		previous = account.Balance
		account.Apply(newBalance.Sub(previous), date)
		return s.repo.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logger.Warn(ctx, "balance corrected",
		"account", ref.String(),
		"previous", previous.String(),
		"balance", newBalance.String(),
		"reason", reason,
	)
	return account, nil
}

// GetBalance returns the current balance of the referenced account.
func (s *Service) GetBalance(ctx context.Context, ref entity.AccountRef) (types.Money, error) {
	account, err := s.resolve(ctx, ref, false)
	if err != nil {
		return types.Zero(), err
	}
	return account.Balance, nil
}

// Get returns the referenced account.
func (s *Service) Get(ctx context.Context, ref entity.AccountRef) (*Account, error) {
	return s.resolve(ctx, ref, false)
}

// Exists reports whether ref resolves to an active account; used by other engines.
func (s *Service) Exists(ctx context.Context, ref entity.AccountRef) error {
	_, err := s.resolve(ctx, ref, false)
	return err
}

// GetByOwner returns the account of an owner.
func (s *Service) GetByOwner(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (*Account, error) {
	return s.repo.GetByOwner(ctx, kind, ownerID)
}

// List returns accounts.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Account], error) {
	return s.repo.List(ctx, filter)
}

// ActiveAccounts returns every active account of kind (all kinds when empty).
func (s *Service) ActiveAccounts(ctx context.Context, kind entity.AccountKind) ([]*Account, error) {
	result, err := s.repo.List(ctx, ListFilter{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	return result.Items, nil
}

// Deactivate soft-deletes an account with zero balance.
func (s *Service) Deactivate(ctx context.Context, ref entity.AccountRef) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		account, err := s.resolve(ctx, ref, true)
		if err != nil {
			return err
		}
		if !account.Balance.IsZero() {
			return apperror.NewConflict("account balance must be zero to deactivate").
				WithDetail("account", ref.String()).
				WithDetail("balance", account.Balance.String())
		}
		account.Deactivate()
		return s.repo.Update(ctx, account)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "account deactivated", "account", ref.String())
	return nil
}

// resolve loads the account behind ref; it must be active and of exactly the referenced kind.
func (s *Service) resolve(ctx context.Context, ref entity.AccountRef, forUpdate bool) (*Account, error) {
	if err := ref.Require(); err != nil {
		return nil, err
	}

	var (
		account *Account
		err     error
	)
	if forUpdate {
		account, err = s.repo.GetForUpdate(ctx, ref.ID)
	} else {
		account, err = s.repo.GetByID(ctx, ref.ID)
	}
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("account", ref.String())
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	if account.Kind != ref.Kind || !account.Active {
		return nil, apperror.NewNotFound("account", ref.String())
	}
	return account, nil
}
