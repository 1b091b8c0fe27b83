package payroll

import (
	"context"
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/pkg/logger"
)

// AccountChecker verifies that an account exists.
type AccountChecker interface {
	Exists(ctx context.Context, ref entity.AccountRef) error
}

// AdvanceInput describes a new advance.
type AdvanceInput struct {
	MemberAccountID id.ID       `json:"memberAccountId"`
	Date            types.Date  `json:"date"`
	Amount          types.Money `json:"amount"`
	Notes           string      `json:"notes"`

	// SettlementID pre-links the advance to an unpaid settlement of the same member.
	SettlementID *id.ID `json:"settlementId,omitempty"`
	MovementID   *id.ID `json:"movementId,omitempty"`
}

// SettlementInput describes a new payroll settlement.
type SettlementInput struct {
	MemberAccountID id.ID        `json:"memberAccountId"`
	GrossSalary     types.Money  `json:"grossSalary"`
	Period          types.Period `json:"period"`
	PaymentDate     types.Date   `json:"paymentDate"`
	AdvanceIDs      []id.ID      `json:"advanceIds,omitempty"`

	// NetSalary defaults to ComputeNet(GrossSalary, AdvanceIDs).
	NetSalary *types.Money `json:"netSalary,omitempty"`
}

// Service is the payroll and advance engine.
type Service struct {
	repo      Repository
	accounts  AccountChecker
	txManager tx.Manager
}

// NewService creates the payroll engine.
func NewService(repo Repository, accounts AccountChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		txManager: txManager,
	}
}

// CreateAdvance records an advance for a member.
func (s *Service) CreateAdvance(ctx context.Context, in AdvanceInput) (*Advance, error) {
	a := &Advance{
		BaseEntity:      entity.NewBaseEntity(),
		MemberAccountID: in.MemberAccountID,
		MovementID:      in.MovementID,
		Date:            in.Date,
		Amount:          types.RoundMoney(in.Amount),
		Notes:           in.Notes,
	}
	if err := a.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.Exists(ctx, entity.MemberAccount(a.MemberAccountID)); err != nil {
			return err
		}

		if a.MovementID != nil {
			if _, err := s.repo.FindAdvanceByMovement(ctx, *a.MovementID); err == nil {
				return apperror.NewConflict("money movement already carries an advance").
					WithDetail("movementId", a.MovementID.String())
			} else if !apperror.IsNotFound(err) {
				return err
			}
		}

		if in.SettlementID != nil {
			settlement, err := s.lockSettlement(ctx, *in.SettlementID)
			if err != nil {
				return err
			}
			if err := canAbsorb(settlement, a); err != nil {
				return err
			}
			a.PayrollSettlementID = &settlement.ID
		}

		if err := s.repo.CreateAdvance(ctx, a); err != nil {
			return fmt.Errorf("create advance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "advance created",
		"advance_id", a.ID,
		"member_account_id", a.MemberAccountID,
		"amount", a.Amount.String(),
	)
	return a, nil
}

// CreateSettlement records the payroll of a member for a period and links the given advances.
func (s *Service) CreateSettlement(ctx context.Context, in SettlementInput) (*Settlement, error) {
	settlement := &Settlement{
		BaseEntity:      entity.NewBaseEntity(),
		MemberAccountID: in.MemberAccountID,
		GrossSalary:     types.RoundMoney(in.GrossSalary),
		Period:          in.Period,
		PaymentDate:     in.PaymentDate,
	}
	if in.NetSalary != nil {
		settlement.NetSalary = types.RoundMoney(*in.NetSalary)
	}
	if err := settlement.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.Exists(ctx, entity.MemberAccount(settlement.MemberAccountID)); err != nil {
			return err
		}

		if _, err := s.repo.FindSettlement(ctx, settlement.MemberAccountID, settlement.Period); err == nil {
			return apperror.NewConflict("member already has a settlement for this period").
				WithDetail("memberAccountId", settlement.MemberAccountID.String()).
				WithDetail("period", string(settlement.Period))
		} else if !apperror.IsNotFound(err) {
			return err
		}

		advances := make([]*Advance, 0, len(in.AdvanceIDs))
		seen := make(map[id.ID]struct{}, len(in.AdvanceIDs))
		for _, advanceID := range in.AdvanceIDs {
			if _, dup := seen[advanceID]; dup {
				return apperror.NewValidation("advance listed twice").WithDetail("advanceId", advanceID.String())
			}
			seen[advanceID] = struct{}{}

			a, err := s.lockAdvance(ctx, advanceID)
			if err != nil {
				return err
			}
			if err := linkable(settlement.MemberAccountID, a); err != nil {
				return err
			}
			advances = append(advances, a)
		}

		if in.NetSalary == nil {
			settlement.NetSalary = netOf(settlement.GrossSalary, advances)
			if settlement.NetSalary.IsNegative() {
				return apperror.NewValidation("advances exceed the gross salary").
					WithDetail("grossSalary", settlement.GrossSalary.String()).
					WithDetail("netSalary", settlement.NetSalary.String())
			}
		}

		if err := s.repo.CreateSettlement(ctx, settlement); err != nil {
			return fmt.Errorf("create settlement: %w", err)
		}
		for _, a := range advances {
			a.PayrollSettlementID = &settlement.ID
			if err := s.repo.UpdateAdvance(ctx, a); err != nil {
				return fmt.Errorf("link advance %s: %w", a.ID, err)
			}
		}
		settlement.Advances = advances
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payroll settlement created",
		"settlement_id", settlement.ID,
		"member_account_id", settlement.MemberAccountID,
		"period", settlement.Period,
		"advances", len(settlement.Advances),
	)
	return settlement, nil
}

// LinkAdvance attaches an unsettled advance to a settlement. Links are permanent.
func (s *Service) LinkAdvance(ctx context.Context, advanceID, settlementID id.ID) (*Advance, error) {
	var a *Advance
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		settlement, err := s.lockSettlement(ctx, settlementID)
		if err != nil {
			return err
		}
		a, err = s.lockAdvance(ctx, advanceID)
		if err != nil {
			return err
		}
		if err := canAbsorb(settlement, a); err != nil {
			return err
		}

		a.PayrollSettlementID = &settlement.ID
		return s.repo.UpdateAdvance(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "advance linked", "advance_id", advanceID, "settlement_id", settlementID)
	return a, nil
}

// MarkPaid stamps the payment date of a settlement.
func (s *Service) MarkPaid(ctx context.Context, settlementID id.ID, date types.Date) (*Settlement, error) {
	if date.IsZero() {
		return nil, apperror.NewValidation("payment date is required").WithDetail("field", "paymentDate")
	}

	var settlement *Settlement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		settlement, err = s.lockSettlement(ctx, settlementID)
		if err != nil {
			return err
		}
		if settlement.Paid() {
			return apperror.NewConflict("settlement is already paid").
				WithDetail("settlementId", settlementID.String()).
				WithDetail("paymentDate", settlement.PaymentDate.String())
		}
		settlement.PaymentDate = date
		return s.repo.UpdateSettlement(ctx, settlement)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payroll settlement paid", "settlement_id", settlementID, "payment_date", date.String())
	return settlement, nil
}

// ComputeNet suggests the net salary: gross minus the given advances.
func (s *Service) ComputeNet(ctx context.Context, gross types.Money, advanceIDs []id.ID) (types.Money, error) {
	advances := make([]*Advance, 0, len(advanceIDs))
	for _, advanceID := range advanceIDs {
		a, err := s.repo.GetAdvance(ctx, advanceID)
		if apperror.IsNotFound(err) || (err == nil && !a.Active) {
			return types.Zero(), apperror.NewNotFound("advance", advanceID.String())
		}
		if err != nil {
			return types.Zero(), err
		}
		advances = append(advances, a)
	}
	return netOf(types.RoundMoney(gross), advances), nil
}

// GetSettlement returns a settlement with its active advances.
func (s *Service) GetSettlement(ctx context.Context, settlementID id.ID) (*Settlement, error) {
	settlement, err := s.repo.GetSettlement(ctx, settlementID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("payroll settlement", settlementID.String())
	}
	if err != nil {
		return nil, err
	}

	settlement.Advances, err = s.repo.ListAdvances(ctx, AdvanceFilter{SettlementID: &settlement.ID})
	if err != nil {
		return nil, fmt.Errorf("load advances: %w", err)
	}
	return settlement, nil
}

// ListAdvances returns the active advances of a member.
func (s *Service) ListAdvances(ctx context.Context, memberAccountID id.ID, unsettledOnly bool) ([]*Advance, error) {
	return s.repo.ListAdvances(ctx, AdvanceFilter{
		MemberAccountID: memberAccountID,
		UnsettledOnly:   unsettledOnly,
	})
}

// RecordMovementAdvance creates the unlinked advance of an ADVANCE money movement.
func (s *Service) RecordMovementAdvance(ctx context.Context, memberAccountID, movementID id.ID, date types.Date, amount types.Money, notes string) error {
	_, err := s.CreateAdvance(ctx, AdvanceInput{
		MemberAccountID: memberAccountID,
		Date:            date,
		Amount:          amount,
		Notes:           notes,
		MovementID:      &movementID,
	})
	return err
}

// ReleaseMovementAdvance deactivates the advance of a deleted money movement.
// Settled advances cannot be released.
func (s *Service) ReleaseMovementAdvance(ctx context.Context, movementID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		found, err := s.repo.FindAdvanceByMovement(ctx, movementID)
		if apperror.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		a, err := s.lockAdvance(ctx, found.ID)
		if err != nil {
			return err
		}
		if a.Settled() {
			return apperror.NewConflict("advance is already settled").
				WithDetail("advanceId", a.ID.String()).
				WithDetail("settlementId", a.PayrollSettlementID.String())
		}

		a.Deactivate()
		if err := s.repo.UpdateAdvance(ctx, a); err != nil {
			return err
		}
		logger.Info(ctx, "advance released", "advance_id", a.ID, "movement_id", movementID)
		return nil
	})
}

func (s *Service) lockSettlement(ctx context.Context, settlementID id.ID) (*Settlement, error) {
	settlement, err := s.repo.GetSettlementForUpdate(ctx, settlementID)
	if apperror.IsNotFound(err) || (err == nil && !settlement.Active) {
		return nil, apperror.NewNotFound("payroll settlement", settlementID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("lock settlement: %w", err)
	}
	return settlement, nil
}

func (s *Service) lockAdvance(ctx context.Context, advanceID id.ID) (*Advance, error) {
	a, err := s.repo.GetAdvanceForUpdate(ctx, advanceID)
	if apperror.IsNotFound(err) || (err == nil && !a.Active) {
		return nil, apperror.NewNotFound("advance", advanceID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("lock advance: %w", err)
	}
	return a, nil
}

// canAbsorb checks that advance a may be linked to an existing settlement.
func canAbsorb(settlement *Settlement, a *Advance) error {
	if err := linkable(settlement.MemberAccountID, a); err != nil {
		return err
	}
	if settlement.Paid() {
		return apperror.NewConflict("settlement is already paid").
			WithDetail("settlementId", settlement.ID.String())
	}
	return nil
}

func linkable(memberAccountID id.ID, a *Advance) error {
	if a.MemberAccountID != memberAccountID {
		return apperror.NewValidation("advance belongs to another member").
			WithDetail("advanceId", a.ID.String()).
			WithDetail("memberAccountId", a.MemberAccountID.String())
	}
	if a.Settled() {
		return apperror.NewValidation("advance is already linked to a settlement").
			WithDetail("advanceId", a.ID.String()).
			WithDetail("settlementId", a.PayrollSettlementID.String())
	}
	return nil
}

func netOf(gross types.Money, advances []*Advance) types.Money {
	net := gross
	for _, a := range advances {
		net = net.Sub(a.Amount)
	}
	return net
}

// PayerLookup resolves payroll settlements acting as allocation payers.
type PayerLookup struct {
	repo Repository
}

// NewPayerLookup creates a payer lookup over the payroll repository.
func NewPayerLookup(repo Repository) *PayerLookup {
	return &PayerLookup{repo: repo}
}

// PayerAccount locks an active settlement and returns its member account.
func (l *PayerLookup) PayerAccount(ctx context.Context, settlementID id.ID) (entity.AccountRef, error) {
	settlement, err := l.repo.GetSettlementForUpdate(ctx, settlementID)
	if apperror.IsNotFound(err) || (err == nil && !settlement.Active) {
		return entity.AccountRef{}, apperror.NewNotFound("payroll settlement", settlementID.String())
	}
	if err != nil {
		return entity.AccountRef{}, err
	}
	return entity.MemberAccount(settlement.MemberAccountID), nil
}
