package fuel

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

// Ledger posts reimbursements to member balances.
type Ledger interface {
	AdjustBalance(ctx context.Context, ref entity.AccountRef, delta types.Money, date types.Date) (types.Money, error)
	Exists(ctx context.Context, ref entity.AccountRef) error
}

var hundred = types.MustMoney("100")

// Service manages fuel reimbursements.
type Service struct {
	repo      Repository
	ledger    Ledger
	txManager tx.Manager
	today     func() types.Date
}

// NewService creates the fuel reimbursement service.
func NewService(repo Repository, ledger Ledger, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		txManager: txManager,
		today:     types.Today,
	}
}

// Accumulate adds expense × percentage / 100 to the member's pending amount.
// The record is created on first use.
func (s *Service) Accumulate(ctx context.Context, memberAccountID id.ID, expense, percentage types.Money) (*Reimbursement, error) {
	if !expense.IsPositive() {
		return nil, apperror.NewValidation("fuel expense must be positive").
			WithDetail("field", "expense").
			WithDetail("amount", expense.String())
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return nil, apperror.NewValidation("percentage must be between 0 and 100").
			WithDetail("field", "percentage").
			WithDetail("percentage", percentage.String())
	}
	share := types.RoundMoney(expense.Mul(percentage).Div(hundred))

	var r *Reimbursement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref := entity.MemberAccount(memberAccountID)
		if err := s.ledger.Exists(ctx, ref); err != nil {
			return err
		}

		var err error
		r, err = s.repo.GetByMemberForUpdate(ctx, memberAccountID)
		if apperror.IsNotFound(err) {
			r = &Reimbursement{
				BaseEntity:        entity.NewBaseEntity(),
				MemberAccountID:   memberAccountID,
				AccumulatedAmount: share,
				CreatedDate:       s.today(),
			}
			return s.repo.Create(ctx, r)
		}
		if err != nil {
			return fmt.Errorf("lock fuel record: %w", err)
		}

		r.AccumulatedAmount = r.AccumulatedAmount.Add(share)
		return s.repo.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "fuel share accumulated",
		"member_account_id", memberAccountID,
		"share", share.String(),
		"accumulated", r.AccumulatedAmount.String(),
	)
	return r, nil
}

// Reimburse posts the accumulated amount to the member account and resets it.
func (s *Service) Reimburse(ctx context.Context, memberAccountID id.ID, date types.Date) (types.Money, error) {
	if date.IsZero() {
		date = s.today()
	}

	var paid types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetByMemberForUpdate(ctx, memberAccountID)
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("fuel reimbursement", memberAccountID.String())
		}
		if err != nil {
			return fmt.Errorf("lock fuel record: %w", err)
		}
		if !r.AccumulatedAmount.IsPositive() {
			return apperror.NewConflict("nothing to reimburse").
				WithDetail("memberAccountId", memberAccountID.String())
		}

		paid = r.AccumulatedAmount
		if _, err := s.ledger.AdjustBalance(ctx, entity.MemberAccount(memberAccountID), paid, date); err != nil {
			return err
		}

		r.AccumulatedAmount = types.Zero()
		r.LastReimbursementDate = date
		return s.repo.Update(ctx, r)
	})
	if err != nil {
		return types.Zero(), err
	}

	logger.Info(ctx, "fuel reimbursed", "member_account_id", memberAccountID, "amount", paid.String(), "date", date.String())
	return paid, nil
}

// ReimburseDue reimburses every record due on date. Failures are reported, not returned.
func (s *Service) ReimburseDue(ctx context.Context, date types.Date) (Report, error) {
	if date.IsZero() {
		date = s.today()
	}
	report := Report{Date: date, Total: types.Zero()}

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return report, fmt.Errorf("list pending fuel records: %w", err)
	}

	for _, r := range pending {
		if !r.DueOn(date) {
			continue
		}
		paid, err := s.Reimburse(ctx, r.MemberAccountID, date)
		if err != nil {
			report.Failed++
			logger.Error(ctx, "fuel reimbursement failed", "member_account_id", r.MemberAccountID, "error", err)
			continue
		}
		report.Reimbursed++
		report.Total = report.Total.Add(paid)
	}

	logger.Info(ctx, "fuel reimbursements processed",
		"date", date.String(),
		"reimbursed", report.Reimbursed,
		"failed", report.Failed,
		"total", report.Total.String(),
	)
	return report, nil
}

// Get returns the record of a member account.
func (s *Service) Get(ctx context.Context, memberAccountID id.ID) (*Reimbursement, error) {
	r, err := s.repo.GetByMember(ctx, memberAccountID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("fuel reimbursement", memberAccountID.String())
	}
	return r, err
}
