// Package numerator provides the contract for voucher numbering of money movements.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPSERT ... RETURNING for every number.
	// Guarantees sequential numbers without gaps.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// May produce gaps if the process restarts.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once by StrategyCached (default 50).
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Reset periods.
const (
	ResetYearly  = "year"
	ResetMonthly = "month"
	ResetNever   = "never"
)

// Config holds numbering configuration for one voucher series.
type Config struct {
	// Prefix added to all numbers (e.g., "CAJ", "MOV")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: ResetYearly, ResetMonthly or ResetNever
	ResetPeriod string
}

// DefaultConfig returns a yearly series PREFIX-YYYY-00001.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYearly,
	}
}

// Generator generates sequential voucher numbers.
type Generator interface {
	// GetNextNumber generates the next number of the series.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., CAJ-2025-00001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the current value of the series (data migration).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
