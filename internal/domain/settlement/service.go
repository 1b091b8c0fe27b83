package settlement

import (
	"context"
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/pkg/logger"
)

// AllocateInput describes a new allocation.
type AllocateInput struct {
	AccountMovementID id.ID           `json:"accountMovementId"`
	Payer             entity.PayerRef `json:"payer"`
	Amount            types.Money     `json:"amount"`
	Date              types.Date      `json:"date"`
	Note              string          `json:"note"`
}

// ModifyInput lists the editable fields of a money-movement-backed allocation.
type ModifyInput struct {
	Amount *types.Money `json:"amount,omitempty"`
	Date   *types.Date  `json:"date,omitempty"`
}

// Service is the settlement allocation engine.
type Service struct {
	repo      Repository
	movements accountmovement.Repository
	payers    Payers
	txManager tx.Manager
}

// NewService creates the allocation engine.
func NewService(repo Repository, movements accountmovement.Repository, payers Payers, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		movements: movements,
		payers:    payers,
		txManager: txManager,
	}
}

// Allocate pays part of an account movement with a payer instrument.
// Concurrent allocations against the same movement serialize on its row lock.
func (s *Service) Allocate(ctx context.Context, in AllocateInput) (*Allocation, error) {
	if in.Date.IsZero() {
		in.Date = types.Today()
	}
	a := &Allocation{
		BaseEntity:        entity.NewBaseEntity(),
		AccountMovementID: in.AccountMovementID,
		Payer:             in.Payer,
		AllocatedAmount:   types.RoundMoney(in.Amount),
		AllocationDate:    in.Date,
		Note:              in.Note,
	}
	if err := a.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		payerAccount, err := s.resolvePayer(ctx, a.Payer)
		if err != nil {
			return err
		}

		m, err := s.lockMovement(ctx, a.AccountMovementID)
		if err != nil {
			return err
		}
		if !payerAccount.IsNone() && payerAccount != m.Account {
			return apperror.NewValidation("payer belongs to a different account").
				WithDetail("payerAccount", payerAccount.String()).
				WithDetail("movementAccount", m.Account.String())
		}

		if err := s.reserve(ctx, m, types.Zero(), a.AllocatedAmount); err != nil {
			return err
		}
		return s.repo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "allocation created",
		"allocation_id", a.ID,
		"movement_id", a.AccountMovementID,
		"payer", a.Payer.String(),
		"amount", a.AllocatedAmount.String(),
	)
	return a, nil
}

// EditNote changes the note of any allocation regardless of its payer.
func (s *Service) EditNote(ctx context.Context, allocationID id.ID, note string) (*Allocation, error) {
	var a *Allocation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.get(ctx, allocationID)
		if err != nil {
			return err
		}
		if !a.Active {
			return apperror.NewConflict("allocation is inactive").WithDetail("allocationId", allocationID.String())
		}
		a.Note = note
		return s.repo.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Modify changes amount and/or date of a money-movement-backed allocation.
func (s *Service) Modify(ctx context.Context, allocationID id.ID, in ModifyInput) (*Allocation, error) {
	var a *Allocation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.loadMutable(ctx, allocationID, "modified")
		if err != nil {
			return err
		}

		if in.Amount != nil {
			newAmount := types.RoundMoney(*in.Amount)
			if !newAmount.IsPositive() {
				return apperror.NewValidation("allocated amount must be positive").WithDetail("field", "amount")
			}
			m, err := s.lockMovement(ctx, a.AccountMovementID)
			if err != nil {
				return err
			}
			if err := s.reserve(ctx, m, a.AllocatedAmount, newAmount); err != nil {
				return err
			}
			a.AllocatedAmount = newAmount
		}
		if in.Date != nil {
			if in.Date.IsZero() {
				return apperror.NewValidation("allocation date is required").WithDetail("field", "date")
			}
			a.AllocationDate = *in.Date
		}
		return s.repo.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "allocation modified", "allocation_id", a.ID, "amount", a.AllocatedAmount.String())
	return a, nil
}

// Delete soft-deletes a money-movement-backed allocation. The transition is terminal.
func (s *Service) Delete(ctx context.Context, allocationID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		a, err := s.loadMutable(ctx, allocationID, "deleted")
		if err != nil {
			return err
		}
		return s.release(ctx, a)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "allocation deleted", "allocation_id", allocationID)
	return nil
}

// DeleteByPayer deletes every active allocation of a money movement payer
// and returns how many were released.
func (s *Service) DeleteByPayer(ctx context.Context, payer entity.PayerRef) (int, error) {
	if err := payer.Validate(); err != nil {
		return 0, err
	}
	if !payer.Mutable() {
		return 0, apperror.NewImmutable("allocations of this payer are permanent").
			WithDetail("payer", payer.String())
	}

	var released int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		allocations, err := s.repo.ListByPayer(ctx, payer, false)
		if err != nil {
			return fmt.Errorf("list allocations by payer: %w", err)
		}
		for _, a := range allocations {
			if err := s.release(ctx, a); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// Summary reports how much of a movement is paid.
func (s *Service) Summary(ctx context.Context, movementID id.ID) (Summary, error) {
	m, err := s.movements.GetByID(ctx, movementID)
	if apperror.IsNotFound(err) {
		return Summary{}, apperror.NewNotFound("account movement", movementID.String())
	}
	if err != nil {
		return Summary{}, err
	}

	allocations, err := s.repo.ListByMovement(ctx, movementID, false)
	if err != nil {
		return Summary{}, err
	}
	allocated := types.Zero()
	for _, a := range allocations {
		allocated = allocated.Add(a.AllocatedAmount)
	}

	outstanding := m.Amount.Sub(allocated)
	if m.IsRepair() {
		outstanding = m.Remaining()
	}
	return Summary{
		AccountMovementID: movementID,
		Amount:            m.Amount,
		Allocated:         allocated,
		Outstanding:       outstanding,
		FullyPaid:         outstanding.IsZero(),
		Allocations:       len(allocations),
	}, nil
}

// Get returns an allocation.
func (s *Service) Get(ctx context.Context, allocationID id.ID) (*Allocation, error) {
	return s.get(ctx, allocationID)
}

// ListByMovement returns allocations of an account movement.
func (s *Service) ListByMovement(ctx context.Context, movementID id.ID, includeInactive bool) ([]*Allocation, error) {
	return s.repo.ListByMovement(ctx, movementID, includeInactive)
}

// ListByPayer returns allocations paid by payer.
func (s *Service) ListByPayer(ctx context.Context, payer entity.PayerRef, includeInactive bool) ([]*Allocation, error) {
	if err := payer.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByPayer(ctx, payer, includeInactive)
}

// HasActiveAllocations reports whether payer backs any active allocation.
func (s *Service) HasActiveAllocations(ctx context.Context, payer entity.PayerRef) (bool, error) {
	allocations, err := s.repo.ListByPayer(ctx, payer, false)
	if err != nil {
		return false, err
	}
	return len(allocations) > 0, nil
}

// reserve replaces an allocated share of m: previous is released and next taken.
// Repairs persist the new remaining balance; other kinds check the allocation sum.
func (s *Service) reserve(ctx context.Context, m *accountmovement.AccountMovement, previous, next types.Money) error {
	if m.IsRepair() {
		remaining := m.Remaining().Add(previous).Sub(next)
		if remaining.IsNegative() {
			return apperror.NewValidation("allocation exceeds the remaining repair balance").
				WithDetail("remaining", m.Remaining().Add(previous).String()).
				WithDetail("requested", next.String())
		}
		m.SetRemaining(remaining)
		if err := s.movements.Update(ctx, m); err != nil {
			return fmt.Errorf("update remaining balance: %w", err)
		}
		return nil
	}

	allocated, err := s.repo.SumActiveByMovement(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("sum allocations: %w", err)
	}
	total := allocated.Sub(previous).Add(next)
	if total.GreaterThan(m.Amount) {
		return apperror.NewValidation("allocations would exceed the movement amount").
			WithDetail("amount", m.Amount.String()).
			WithDetail("allocated", allocated.Sub(previous).String()).
			WithDetail("requested", next.String())
	}
	return nil
}

// release deactivates an allocation and gives its amount back to a repair.
func (s *Service) release(ctx context.Context, a *Allocation) error {
	m, err := s.lockMovement(ctx, a.AccountMovementID)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if m != nil && m.IsRepair() {
		m.SetRemaining(m.Remaining().Add(a.AllocatedAmount))
		if err := s.movements.Update(ctx, m); err != nil {
			return fmt.Errorf("restore remaining balance: %w", err)
		}
	}

	a.Deactivate()
	return s.repo.Update(ctx, a)
}

func (s *Service) loadMutable(ctx context.Context, allocationID id.ID, action string) (*Allocation, error) {
	a, err := s.get(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if !a.Payer.Mutable() {
		return nil, apperror.NewImmutable(fmt.Sprintf("allocations paid by %s cannot be %s", a.Payer.Kind, action)).
			WithDetail("allocationId", allocationID.String()).
			WithDetail("payer", a.Payer.String())
	}
	if !a.Active {
		return nil, apperror.NewConflict("allocation is inactive").WithDetail("allocationId", allocationID.String())
	}
	return a, nil
}

func (s *Service) get(ctx context.Context, allocationID id.ID) (*Allocation, error) {
	a, err := s.repo.GetByID(ctx, allocationID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("allocation", allocationID.String())
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) resolvePayer(ctx context.Context, payer entity.PayerRef) (entity.AccountRef, error) {
	lookup, ok := s.payers[payer.Kind]
	if !ok {
		return entity.AccountRef{}, apperror.NewInternal(fmt.Errorf("no lookup for payer kind %s", payer.Kind))
	}
	return lookup.PayerAccount(ctx, payer.ID)
}

func (s *Service) lockMovement(ctx context.Context, movementID id.ID) (*accountmovement.AccountMovement, error) {
	m, err := s.movements.GetForUpdate(ctx, movementID)
	if apperror.IsNotFound(err) || (err == nil && !m.Active) {
		return nil, apperror.NewNotFound("account movement", movementID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("lock account movement: %w", err)
	}
	return m, nil
}
