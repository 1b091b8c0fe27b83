// Package jobs exposes the idempotent period entry points called by the external clock.
package jobs

import (
	"context"
	"fmt"

	"taxiledger/internal/core/apperror"
	appctx "taxiledger/internal/core/context"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/domain/fuel"
	"taxiledger/internal/domain/history"
	"taxiledger/internal/domain/registers/cash"
	"taxiledger/pkg/logger"
)

// Name identifies a period job.
type Name string

const (
	GenerateRecurring Name = "generate-recurring"
	CloseMonth        Name = "close-month"
	OpenDay           Name = "open-day"
	CloseDay          Name = "close-day"
	ReimburseFuel     Name = "reimburse-fuel"
)

// Job is a decoded trigger message.
type Job struct {
	Name   Name         `json:"job"`
	Period types.Period `json:"period,omitempty"`
	Date   types.Date   `json:"date"`
}

// Validate checks that the job carries the argument its entry point needs.
func (j Job) Validate() error {
	switch j.Name {
	case GenerateRecurring, CloseMonth:
		if !j.Period.Valid() {
			return apperror.NewValidation("period must match YYYY-MM").
				WithDetail("job", string(j.Name)).
				WithDetail("field", "period")
		}
	case OpenDay, CloseDay, ReimburseFuel:
	default:
		return apperror.NewValidation("unknown job").WithDetail("job", string(j.Name))
	}
	return nil
}

// Movements generates recurring movements.
type Movements interface {
	GenerateRecurring(ctx context.Context, period types.Period) (accountmovement.GenerationReport, error)
}

// Histories closes account periods.
type Histories interface {
	CloseMonthAll(ctx context.Context, period types.Period) (history.CloseReport, error)
}

// CashDays opens and closes cash register days.
type CashDays interface {
	OpenDay(ctx context.Context, date types.Date) (*cash.DayHistory, error)
	CloseDay(ctx context.Context, date types.Date) (*cash.DayHistory, error)
}

// Fuel reimburses due fuel shares.
type Fuel interface {
	ReimburseDue(ctx context.Context, date types.Date) (fuel.Report, error)
}

// Runner runs period jobs. Every entry point may be retried safely.
type Runner struct {
	movements Movements
	histories Histories
	cash      CashDays
	fuel      Fuel
	today     func() types.Date
}

// NewRunner creates a job runner.
func NewRunner(movements Movements, histories Histories, cashDays CashDays, fuelService Fuel) *Runner {
	return &Runner{
		movements: movements,
		histories: histories,
		cash:      cashDays,
		fuel:      fuelService,
		today:     types.Today,
	}
}

// GenerateRecurringMovements creates the recurring movements of period.
func (r *Runner) GenerateRecurringMovements(ctx context.Context, period types.Period) (accountmovement.GenerationReport, error) {
	ctx = appctx.WithJob(ctx, string(GenerateRecurring))
	return r.movements.GenerateRecurring(ctx, period)
}

// CloseMonth snapshots every active account for period.
func (r *Runner) CloseMonth(ctx context.Context, period types.Period) (history.CloseReport, error) {
	ctx = appctx.WithJob(ctx, string(CloseMonth))
	return r.histories.CloseMonthAll(ctx, period)
}

// OpenDay opens the cash day. An already opened day is not an error.
func (r *Runner) OpenDay(ctx context.Context, date types.Date) error {
	ctx = appctx.WithJob(ctx, string(OpenDay))
	_, err := r.cash.OpenDay(ctx, r.dateOrToday(date))
	if apperror.IsConflict(err) {
		logger.Warn(ctx, "cash day already opened", "date", date.String())
		return nil
	}
	return err
}

// CloseDay closes the cash day. An already closed day is not an error.
func (r *Runner) CloseDay(ctx context.Context, date types.Date) error {
	ctx = appctx.WithJob(ctx, string(CloseDay))
	_, err := r.cash.CloseDay(ctx, r.dateOrToday(date))
	if apperror.IsConflict(err) {
		logger.Warn(ctx, "cash day already closed", "date", date.String())
		return nil
	}
	return err
}

// ReimburseFuel pays every fuel share due on date.
func (r *Runner) ReimburseFuel(ctx context.Context, date types.Date) (fuel.Report, error) {
	ctx = appctx.WithJob(ctx, string(ReimburseFuel))
	return r.fuel.ReimburseDue(ctx, r.dateOrToday(date))
}

// Dispatch routes a trigger message to its entry point.
func (r *Runner) Dispatch(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	var err error
	switch job.Name {
	case GenerateRecurring:
		_, err = r.GenerateRecurringMovements(ctx, job.Period)
	case CloseMonth:
		_, err = r.CloseMonth(ctx, job.Period)
	case OpenDay:
		err = r.OpenDay(ctx, job.Date)
	case CloseDay:
		err = r.CloseDay(ctx, job.Date)
	case ReimburseFuel:
		_, err = r.ReimburseFuel(ctx, job.Date)
	}
	if err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}
	return nil
}

func (r *Runner) dateOrToday(date types.Date) types.Date {
	if date.IsZero() {
		return r.today()
	}
	return date
}
