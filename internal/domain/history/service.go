package history

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/ledger"
	"taxiledger/pkg/logger"
)

// DefaultConcurrency bounds the parallel closes of CloseMonthAll.
const DefaultConcurrency = 4

// Balances reads account balances.
type Balances interface {
	GetBalance(ctx context.Context, ref entity.AccountRef) (types.Money, error)
	ActiveAccounts(ctx context.Context, kind entity.AccountKind) ([]*ledger.Account, error)
}

// Service closes account periods.
type Service struct {
	repo        Repository
	balances    Balances
	txManager   tx.Manager
	concurrency int
}

// NewService creates the history closer. Non-positive concurrency selects DefaultConcurrency.
func NewService(repo Repository, balances Balances, txManager tx.Manager, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		repo:        repo,
		balances:    balances,
		txManager:   txManager,
		concurrency: concurrency,
	}
}

// CloseMonth snapshots the current balance of an account as its month-end balance.
// A second close of the same period fails with PeriodClosed.
func (s *Service) CloseMonth(ctx context.Context, ref entity.AccountRef, period types.Period) (*AccountHistory, error) {
	if err := ref.Require(); err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, apperror.NewValidation("period must match YYYY-MM").WithDetail("field", "period")
	}

	h := &AccountHistory{
		BaseEntity:       entity.NewBaseEntity(),
		Account:          ref,
		Period:           period,
		RegistrationDate: period.FirstDayOfNext(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Find(ctx, ref, period); err == nil {
			return apperror.NewPeriodClosed(string(period)).WithDetail("account", ref.String())
		} else if !apperror.IsNotFound(err) {
			return err
		}

		balance, err := s.balances.GetBalance(ctx, ref)
		if err != nil {
			return err
		}
		h.MonthEndBalance = balance

		if err := s.repo.Create(ctx, h); err != nil {
			return fmt.Errorf("create account history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "month closed", "account", ref.String(), "period", period, "balance", h.MonthEndBalance.String())
	return h, nil
}

// CloseMonthAll closes period for every active account. Accounts already closed
// are skipped and failures are reported without aborting the run.
func (s *Service) CloseMonthAll(ctx context.Context, period types.Period) (CloseReport, error) {
	report := CloseReport{Period: period}
	if !period.Valid() {
		return report, apperror.NewValidation("period must match YYYY-MM").WithDetail("field", "period")
	}

	accounts, err := s.balances.ActiveAccounts(ctx, "")
	if err != nil {
		return report, fmt.Errorf("list active accounts: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, account := range accounts {
		ref := account.Ref()
		g.Go(func() error {
			_, err := s.CloseMonth(gctx, ref, period)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Closed++
			case apperror.IsConflict(err):
				report.Skipped++
			default:
				report.Failed++
				logger.Error(ctx, "month close failed", "account", ref.String(), "period", period, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	logger.Info(ctx, "period closed",
		"period", period,
		"closed", report.Closed,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// List returns the closed periods of an account.
func (s *Service) List(ctx context.Context, ref entity.AccountRef) ([]*AccountHistory, error) {
	if err := ref.Require(); err != nil {
		return nil, err
	}
	return s.repo.ListByAccount(ctx, ref)
}

// Delete soft-deletes a history row so the period can be closed again.
func (s *Service) Delete(ctx context.Context, historyID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		h, err := s.repo.GetByID(ctx, historyID)
		if apperror.IsNotFound(err) || (err == nil && !h.Active) {
			return apperror.NewNotFound("account history", historyID.String())
		}
		if err != nil {
			return err
		}
		h.Deactivate()
		return s.repo.Update(ctx, h)
	})
}
