// Package types provides common value types shared by the ledger packages.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for monetary values (NUMERIC(14,2)).
const MoneyScale int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to the storage scale using banker's rounding.
func RoundMoney(m Money) Money {
	return m.RoundBank(MoneyScale)
}

// SignedDelta returns +amount for income and -amount otherwise.
func SignedDelta(amount Money, income bool) Money {
	if income {
		return amount
	}
	return amount.Neg()
}

// SumMoney adds up a list of amounts.
func SumMoney(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
