package accountmovement

import (
	"context"
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/internal/domain/ledger"
	"taxiledger/pkg/logger"
)

// Ledger is the part of the account ledger the engine needs.
type Ledger interface {
	AdjustBalance(ctx context.Context, ref entity.AccountRef, delta types.Money, date types.Date) (types.Money, error)
	Exists(ctx context.Context, ref entity.AccountRef) error
	ActiveAccounts(ctx context.Context, kind entity.AccountKind) ([]*ledger.Account, error)
}

// TypeRegistry resolves movement types.
type TypeRegistry interface {
	Resolve(ctx context.Context, typeID id.ID, kind movementtype.Kind) (*movementtype.Type, error)
	Recurring(ctx context.Context) ([]*movementtype.Type, error)
}

// CreateInput describes a new movement.
type CreateInput struct {
	Account            entity.AccountRef `json:"account"`
	Kind               Kind              `json:"kind"`
	TypeID             *id.ID            `json:"typeId,omitempty"`
	Amount             types.Money       `json:"amount"`
	Period             types.Period      `json:"period"`
	Note               string            `json:"note"`
	CurrentInstallment *int              `json:"currentInstallment,omitempty"`
	FinalInstallment   *int              `json:"finalInstallment,omitempty"`
	RepairType         string            `json:"repairType,omitempty"`

	// RemainingBalance overrides the initial repair balance; must lie within [0, amount].
	RemainingBalance *types.Money `json:"remainingBalance,omitempty"`
}

// UpdateInput lists the fields editable while a movement is not posted. Nil means unchanged.
type UpdateInput struct {
	Amount             *types.Money `json:"amount,omitempty"`
	Note               *string      `json:"note,omitempty"`
	CurrentInstallment *int         `json:"currentInstallment,omitempty"`
	FinalInstallment   *int         `json:"finalInstallment,omitempty"`
}

// GenerationReport summarizes a recurring generation run.
type GenerationReport struct {
	Period  types.Period `json:"period"`
	Created int          `json:"created"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}

// Service is the account movement engine.
type Service struct {
	repo        Repository
	ledger      Ledger
	registry    TypeRegistry
	allocations AllocationTotals
	txManager   tx.Manager
	hooks       *domain.HookRegistry[*AccountMovement]
}

// NewService creates the account movement engine.
func NewService(
	repo Repository,
	ledger Ledger,
	registry TypeRegistry,
	allocations AllocationTotals,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:        repo,
		ledger:      ledger,
		registry:    registry,
		allocations: allocations,
		txManager:   txManager,
		hooks:       domain.NewHookRegistry[*AccountMovement](),
	}
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*AccountMovement] {
	return s.hooks
}

// Create validates and stores a new, unposted movement.
func (s *Service) Create(ctx context.Context, in CreateInput) (*AccountMovement, error) {
	m := &AccountMovement{
		BaseEntity:         entity.NewBaseEntity(),
		Account:            in.Account,
		Kind:               in.Kind,
		TypeID:             in.TypeID,
		Amount:             types.RoundMoney(in.Amount),
		Period:             in.Period,
		Note:               in.Note,
		CurrentInstallment: in.CurrentInstallment,
		FinalInstallment:   in.FinalInstallment,
	}
	if in.Kind == KindWorkshopRepair {
		m.RepairType = in.RepairType
		remaining := m.Amount
		if in.RemainingBalance != nil {
			remaining = types.RoundMoney(*in.RemainingBalance)
		}
		m.SetRemaining(remaining)
	} else if in.RemainingBalance != nil || in.RepairType != "" {
		return nil, apperror.NewValidation("repair fields are only allowed on workshop repairs").
			WithDetail("field", "remainingBalance")
	}

	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledger.Exists(ctx, m.Account); err != nil {
			return err
		}

		if m.TypeID != nil {
			t, err := s.registry.Resolve(ctx, *m.TypeID, m.Kind.TypeKind())
			if err != nil {
				return err
			}
			m.Recurring = t.MonthlyRecurrence
		}

		if m.Recurring {
			exists, err := s.repo.ExistsRecurring(ctx, m.Account, m.Period, *m.TypeID)
			if err != nil {
				return fmt.Errorf("check recurring uniqueness: %w", err)
			}
			if exists {
				return apperror.NewConflict("recurring movement already exists for this period").
					WithDetail("account", m.Account.String()).
					WithDetail("period", string(m.Period)).
					WithDetail("typeId", m.TypeID.String())
			}
		}

		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, m); err != nil {
		logger.Warn(ctx, "after-create hook failed", "movement_id", m.ID, "error", err)
	}
	logger.Info(ctx, "account movement created",
		"movement_id", m.ID,
		"account", m.Account.String(),
		"kind", m.Kind,
		"amount", m.Amount.String(),
		"period", m.Period,
	)
	return m, nil
}

// Post adds the movement to its account balance.
// Posting twice fails with a Conflict and leaves the balance untouched.
func (s *Service) Post(ctx context.Context, movementID id.ID, asOf types.Date) (*AccountMovement, error) {
	if asOf.IsZero() {
		asOf = types.Today()
	}

	var m *AccountMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.lockActive(ctx, movementID)
		if err != nil {
			return err
		}
		if m.Added {
			return apperror.NewAlreadyPosted("account movement", movementID.String())
		}

		m.Added = true
		m.AddedDate = asOf
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("mark posted: %w", err)
		}

		if _, err := s.ledger.AdjustBalance(ctx, m.Account, m.Delta(), asOf); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterPost, m); err != nil {
		logger.Warn(ctx, "after-post hook failed", "movement_id", m.ID, "error", err)
	}
	logger.Info(ctx, "account movement posted", "movement_id", m.ID, "delta", m.Delta().String())
	return m, nil
}

// Unpost reverses a posting. Used only by correction flows.
func (s *Service) Unpost(ctx context.Context, movementID id.ID, asOf types.Date) (*AccountMovement, error) {
	if asOf.IsZero() {
		asOf = types.Today()
	}

	var m *AccountMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.lockActive(ctx, movementID)
		if err != nil {
			return err
		}
		if !m.Added {
			return apperror.NewNotPosted("account movement", movementID.String())
		}

		m.Added = false
		m.AddedDate = types.Date{}
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("mark unposted: %w", err)
		}

		if _, err := s.ledger.AdjustBalance(ctx, m.Account, m.Delta().Neg(), asOf); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterUnpost, m); err != nil {
		logger.Warn(ctx, "after-unpost hook failed", "movement_id", m.ID, "error", err)
	}
	logger.Info(ctx, "account movement unposted", "movement_id", m.ID, "delta", m.Delta().Neg().String())
	return m, nil
}

// Update edits an unposted movement.
func (s *Service) Update(ctx context.Context, movementID id.ID, in UpdateInput) (*AccountMovement, error) {
	var m *AccountMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.lockActive(ctx, movementID)
		if err != nil {
			return err
		}
		if m.Added {
			return apperror.NewConflict("posted movements cannot be edited; unpost first").
				WithDetail("movementId", movementID.String())
		}

		if in.Note != nil {
			m.Note = *in.Note
		}
		if in.CurrentInstallment != nil || in.FinalInstallment != nil {
			m.CurrentInstallment = in.CurrentInstallment
			m.FinalInstallment = in.FinalInstallment
		}

		if in.Amount != nil {
			newAmount := types.RoundMoney(*in.Amount)
			allocated, err := s.allocations.SumActiveByMovement(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("sum allocations: %w", err)
			}
			if newAmount.LessThan(allocated) {
				return apperror.NewValidation("amount cannot drop below the allocated sum").
					WithDetail("field", "amount").
					WithDetail("allocated", allocated.String())
			}
			if m.IsRepair() {
				m.SetRemaining(m.Remaining().Add(newAmount.Sub(m.Amount)))
			}
			m.Amount = newAmount
		}

		if err := m.Validate(ctx); err != nil {
			return err
		}
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete soft-deletes an unposted movement without active allocations.
func (s *Service) Delete(ctx context.Context, movementID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.lockActive(ctx, movementID)
		if err != nil {
			return err
		}
		if m.Added {
			return apperror.NewConflict("posted movements cannot be deleted; unpost first").
				WithDetail("movementId", movementID.String())
		}
		allocated, err := s.allocations.SumActiveByMovement(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("sum allocations: %w", err)
		}
		if allocated.IsPositive() {
			return apperror.NewConflict("movement has active allocations").
				WithDetail("movementId", movementID.String()).
				WithDetail("allocated", allocated.String())
		}
		m.Deactivate()
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "account movement deleted", "movement_id", movementID)
	return nil
}

// Get returns a movement.
func (s *Service) Get(ctx context.Context, movementID id.ID) (*AccountMovement, error) {
	m, err := s.repo.GetByID(ctx, movementID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("account movement", movementID.String())
	}
	return m, err
}

// List returns movements matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*AccountMovement], error) {
	if filter.Period != "" && !filter.Period.Valid() {
		return domain.ListResult[*AccountMovement]{}, apperror.NewValidation("period must match YYYY-MM").
			WithDetail("field", "period")
	}
	return s.repo.List(ctx, filter)
}

// GenerateRecurring creates one movement per recurring type and eligible account for period.
// Rows that already exist are skipped, so retries are idempotent.
func (s *Service) GenerateRecurring(ctx context.Context, period types.Period) (GenerationReport, error) {
	report := GenerationReport{Period: period}
	if !period.Valid() {
		return report, apperror.NewValidation("period must match YYYY-MM").WithDetail("field", "period")
	}

	recurring, err := s.registry.Recurring(ctx)
	if err != nil {
		return report, fmt.Errorf("load recurring types: %w", err)
	}

	for _, t := range recurring {
		accounts, err := s.ledger.ActiveAccounts(ctx, t.AppliesTo)
		if err != nil {
			return report, err
		}

		kind := KindMonthlyExpense
		if t.Kind == movementtype.KindIncome {
			kind = KindIncome
		}

		for _, account := range accounts {
			typeID := t.ID
			_, err := s.Create(ctx, CreateInput{
				Account: account.Ref(),
				Kind:    kind,
				TypeID:  &typeID,
				Amount:  t.DefaultAmount,
				Period:  period,
				Note:    t.Name,
			})
			switch {
			case err == nil:
				report.Created++
			case apperror.IsConflict(err):
				report.Skipped++
			default:
				report.Failed++
				logger.Error(ctx, "recurring movement generation failed",
					"type_id", t.ID,
					"account", account.Ref().String(),
					"period", period,
					"error", err,
				)
			}
		}
	}

	logger.Info(ctx, "recurring movements generated",
		"period", period,
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *Service) lockActive(ctx context.Context, movementID id.ID) (*AccountMovement, error) {
	m, err := s.repo.GetForUpdate(ctx, movementID)
	if apperror.IsNotFound(err) || (err == nil && !m.Active) {
		return nil, apperror.NewNotFound("account movement", movementID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("lock account movement: %w", err)
	}
	return m, nil
}
