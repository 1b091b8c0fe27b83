package cash

import (
	"context"
	"errors"
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/pkg/logger"
)

// ErrRegisterMissing is returned when the singleton was never bootstrapped.
var ErrRegisterMissing = errors.New("cash register is not bootstrapped")

// Service provides cash register operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a cash register service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Bootstrap creates the singleton with zero amount. Calling it again is a no-op.
func (s *Service) Bootstrap(ctx context.Context) (*Register, error) {
	var reg *Register
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetRegister(ctx)
		if err == nil {
			reg = existing
			return nil
		}
		if !apperror.IsNotFound(err) {
			return err
		}

		reg = &Register{BaseEntity: entity.NewBaseEntity(), Amount: types.Zero()}
		reg.ID = RegisterID
		if err := s.repo.CreateRegister(ctx, reg); err != nil {
			return fmt.Errorf("create cash register: %w", err)
		}
		logger.Info(ctx, "cash register bootstrapped", "id", RegisterID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Get returns the singleton. A missing register is an internal error.
func (s *Service) Get(ctx context.Context) (*Register, error) {
	reg, err := s.repo.GetRegister(ctx)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewInternal(ErrRegisterMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("get cash register: %w", err)
	}
	return reg, nil
}

// Adjust applies a signed delta to the register amount and returns the new amount.
func (s *Service) Adjust(ctx context.Context, delta types.Money) (types.Money, error) {
	var amount types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		reg, err := s.repo.GetRegisterForUpdate(ctx)
		if apperror.IsNotFound(err) {
			return apperror.NewInternal(ErrRegisterMissing)
		}
		if err != nil {
			return fmt.Errorf("lock cash register: %w", err)
		}
		reg.Amount = reg.Amount.Add(delta)
		if err := s.repo.UpdateRegister(ctx, reg); err != nil {
			return fmt.Errorf("update cash register: %w", err)
		}
		amount = reg.Amount
		return nil
	})
	if err != nil {
		return types.Zero(), err
	}

	logger.Debug(ctx, "cash register adjusted", "delta", delta.String(), "amount", amount.String())
	return amount, nil
}

// OpenDay records the opening balance of date. A second opening is a Conflict.
func (s *Service) OpenDay(ctx context.Context, date types.Date) (*DayHistory, error) {
	if date.IsZero() {
		return nil, apperror.NewValidation("date is required").WithDetail("field", "date")
	}

	var day *DayHistory
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetDay(ctx, date); err == nil {
			return apperror.NewConflict("cash day already opened").WithDetail("date", date.String())
		} else if !apperror.IsNotFound(err) {
			return err
		}

		reg, err := s.Get(ctx)
		if err != nil {
			return err
		}

		day = &DayHistory{
			BaseEntity:    entity.NewBaseEntity(),
			Date:          date,
			InitialAmount: reg.Amount,
		}
		return s.repo.CreateDay(ctx, day)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "cash day opened", "date", date.String(), "initial_amount", day.InitialAmount.String())
	return day, nil
}

// CloseDay sets the final amount of an open day.
func (s *Service) CloseDay(ctx context.Context, date types.Date) (*DayHistory, error) {
	var day *DayHistory
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		day, err = s.repo.GetDay(ctx, date)
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("cash day", date.String())
		}
		if err != nil {
			return err
		}
		if day.Closed() {
			return apperror.NewConflict("cash day already closed").WithDetail("date", date.String())
		}

		reg, err := s.Get(ctx)
		if err != nil {
			return err
		}
		final := reg.Amount
		day.FinalAmount = &final
		return s.repo.UpdateDay(ctx, day)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "cash day closed", "date", date.String(), "final_amount", day.FinalAmount.String())
	return day, nil
}

// ListDays returns the daily history between from and to.
func (s *Service) ListDays(ctx context.Context, from, to types.Date) ([]*DayHistory, error) {
	return s.repo.ListDays(ctx, from, to)
}
