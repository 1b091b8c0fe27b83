package cash

import (
	"context"

	"taxiledger/internal/core/types"
)

// Repository defines operations for the cash register.
type Repository interface {
	// Register operations

	// CreateRegister inserts the singleton row.
	CreateRegister(ctx context.Context, r *Register) error

	// GetRegister returns the singleton or NotFound.
	GetRegister(ctx context.Context) (*Register, error)

	// GetRegisterForUpdate returns the singleton with a row lock.
	GetRegisterForUpdate(ctx context.Context) (*Register, error)

	// UpdateRegister stores the amount with optimistic locking.
	UpdateRegister(ctx context.Context, r *Register) error

	// Daily history

	// CreateDay inserts a day row; a duplicate date is a Conflict.
	CreateDay(ctx context.Context, d *DayHistory) error

	// GetDay returns the row of date or NotFound.
	GetDay(ctx context.Context, date types.Date) (*DayHistory, error)

	// UpdateDay stores the final amount.
	UpdateDay(ctx context.Context, d *DayHistory) error

	// ListDays returns active rows in [from, to], oldest first. Zero bounds are open.
	ListDays(ctx context.Context, from, to types.Date) ([]*DayHistory, error)
}
