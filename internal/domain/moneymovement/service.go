package moneymovement

import (
	"context"
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/numerator"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/pkg/logger"
)

// Ledger applies deltas to account balances.
type Ledger interface {
	AdjustBalance(ctx context.Context, ref entity.AccountRef, delta types.Money, date types.Date) (types.Money, error)
}

// CashRegister applies deltas to the singleton cash register.
type CashRegister interface {
	Adjust(ctx context.Context, delta types.Money) (types.Money, error)
}

// AdvanceDesk records the advances disbursed by ADVANCE movements.
type AdvanceDesk interface {
	// RecordMovementAdvance creates an unlinked advance for the member account.
	RecordMovementAdvance(ctx context.Context, memberAccountID, movementID id.ID, date types.Date, amount types.Money, notes string) error

	// ReleaseMovementAdvance deactivates the advance of a deleted movement.
	// It fails with a Conflict once the advance is settled.
	ReleaseMovementAdvance(ctx context.Context, movementID id.ID) error
}

// AllocationCascade removes the allocations paid by a movement.
type AllocationCascade interface {
	DeleteByPayer(ctx context.Context, payer entity.PayerRef) (int, error)
}

// CreateInput describes a new money movement.
type CreateInput struct {
	Kind         Kind              `json:"kind"`
	Account      entity.AccountRef `json:"account"`
	Description  string            `json:"description"`
	Amount       types.Money       `json:"amount"`
	Date         types.Date        `json:"date"`
	MovementType Category          `json:"movementType"`
	IsIncome     bool              `json:"isIncome"`
}

// Service is the money movement engine.
type Service struct {
	repo        Repository
	ledger      Ledger
	cash        CashRegister
	advances    AdvanceDesk
	allocations AllocationCascade
	numbers     numerator.Generator
	txManager   tx.Manager
}

// Config wires the engine collaborators.
type Config struct {
	Repo        Repository
	Ledger      Ledger
	Cash        CashRegister
	Advances    AdvanceDesk
	Allocations AllocationCascade
	Numerator   numerator.Generator
	TxManager   tx.Manager
}

// NewService creates the money movement engine.
func NewService(cfg Config) *Service {
	return &Service{
		repo:        cfg.Repo,
		ledger:      cfg.Ledger,
		cash:        cfg.Cash,
		advances:    cfg.Advances,
		allocations: cfg.Allocations,
		numbers:     cfg.Numerator,
		txManager:   cfg.TxManager,
	}
}

func voucherConfig(kind Kind) numerator.Config {
	if kind == KindCash {
		return numerator.DefaultConfig("CAJ")
	}
	return numerator.DefaultConfig("MOV")
}

// Create records a money movement and posts it immediately.
func (s *Service) Create(ctx context.Context, in CreateInput) (*MoneyMovement, error) {
	m := &MoneyMovement{
		BaseEntity:   entity.NewBaseEntity(),
		Kind:         in.Kind,
		Account:      in.Account,
		Description:  in.Description,
		Amount:       types.RoundMoney(in.Amount),
		Date:         in.Date,
		MovementType: in.MovementType,
		IsIncome:     in.IsIncome,
	}
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.GetNextNumber(ctx, voucherConfig(m.Kind), nil, m.Date.Time())
		if err != nil {
			return fmt.Errorf("assign voucher number: %w", err)
		}
		m.Number = number

		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create money movement: %w", err)
		}

		if err := s.apply(ctx, m, m.Delta()); err != nil {
			return err
		}

		if m.MovementType == CategoryAdvance {
			if err := s.advances.RecordMovementAdvance(ctx, m.Account.ID, m.ID, m.Date, m.Amount, m.Description); err != nil {
				return fmt.Errorf("record advance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "money movement created",
		"movement_id", m.ID,
		"number", m.Number,
		"kind", m.Kind,
		"account", m.Account.String(),
		"delta", m.Delta().String(),
	)
	return m, nil
}

// Delete reverses a movement's deltas, soft-deletes it and cascades to its
// allocations and advance.
func (s *Service) Delete(ctx context.Context, movementID id.ID, date types.Date) error {
	if date.IsZero() {
		date = types.Today()
	}

	var released int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, movementID)
		if apperror.IsNotFound(err) || (err == nil && !m.Active) {
			return apperror.NewNotFound("money movement", movementID.String())
		}
		if err != nil {
			return fmt.Errorf("lock money movement: %w", err)
		}

		if m.MovementType == CategoryAdvance {
			if err := s.advances.ReleaseMovementAdvance(ctx, m.ID); err != nil {
				return err
			}
		}

		released, err = s.allocations.DeleteByPayer(ctx, entity.MovementPayer(m.ID))
		if err != nil {
			return fmt.Errorf("cascade allocations: %w", err)
		}

		reversal := *m
		reversal.Date = date
		if err := s.apply(ctx, &reversal, m.Delta().Neg()); err != nil {
			return err
		}

		m.Deactivate()
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "money movement deleted", "movement_id", movementID, "allocations_released", released)
	return nil
}

// UpdateDescription edits the free-text description.
func (s *Service) UpdateDescription(ctx context.Context, movementID id.ID, description string) (*MoneyMovement, error) {
	var m *MoneyMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, movementID)
		if apperror.IsNotFound(err) || (err == nil && !m.Active) {
			return apperror.NewNotFound("money movement", movementID.String())
		}
		if err != nil {
			return err
		}
		m.Description = description
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a money movement.
func (s *Service) Get(ctx context.Context, movementID id.ID) (*MoneyMovement, error) {
	m, err := s.repo.GetByID(ctx, movementID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("money movement", movementID.String())
	}
	return m, err
}

// List returns money movements matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*MoneyMovement], error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return domain.ListResult[*MoneyMovement]{}, apperror.NewValidation("date range is inverted").
			WithDetail("from", filter.From.String()).
			WithDetail("to", filter.To.String())
	}
	return s.repo.List(ctx, filter)
}

// apply posts delta to the cash register (cash only) and the referenced account.
func (s *Service) apply(ctx context.Context, m *MoneyMovement, delta types.Money) error {
	if m.Kind == KindCash {
		if _, err := s.cash.Adjust(ctx, delta); err != nil {
			return err
		}
	}
	if !m.Account.IsNone() {
		if _, err := s.ledger.AdjustBalance(ctx, m.Account, delta, m.Date); err != nil {
			return err
		}
	}
	return nil
}

// PayerLookup resolves money movements acting as allocation payers.
type PayerLookup struct {
	repo Repository
}

// NewPayerLookup creates a payer lookup over the movement repository.
func NewPayerLookup(repo Repository) *PayerLookup {
	return &PayerLookup{repo: repo}
}

// PayerAccount locks an active movement and returns the account it carries.
func (l *PayerLookup) PayerAccount(ctx context.Context, movementID id.ID) (entity.AccountRef, error) {
	m, err := l.repo.GetForUpdate(ctx, movementID)
	if apperror.IsNotFound(err) || (err == nil && !m.Active) {
		return entity.AccountRef{}, apperror.NewNotFound("money movement", movementID.String())
	}
	if err != nil {
		return entity.AccountRef{}, err
	}
	return m.Account, nil
}
