// Package movementtype provides the income/expense type registry referenced by account movements.
// Types flagged with monthly recurrence drive the generation of one movement per account and period.
package movementtype

import (
	"context"
	"strings"
	"unicode/utf8"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
)

// Kind separates income types from expense types.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Valid reports whether k is a known type kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

const maxNameLength = 100

// Type is an income or expense category.
type Type struct {
	entity.BaseEntity

	Kind Kind   `db:"kind" json:"kind"`
	Name string `db:"name" json:"name"`

	// MonthlyRecurrence allows at most one movement per account, period and type.
	MonthlyRecurrence bool `db:"monthly_recurrence" json:"monthlyRecurrence"`

	// DefaultAmount is used when recurring movements are generated.
	DefaultAmount types.Money `db:"default_amount" json:"defaultAmount"`

	// AppliesTo selects the accounts recurring generation targets; empty disables generation.
	AppliesTo entity.AccountKind `db:"applies_to" json:"appliesTo,omitempty"`
}

// NewType creates an active type.
func NewType(kind Kind, name string, monthlyRecurrence bool) *Type {
	return &Type{
		BaseEntity:        entity.NewBaseEntity(),
		Kind:              kind,
		Name:              strings.TrimSpace(name),
		MonthlyRecurrence: monthlyRecurrence,
		DefaultAmount:     types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (t *Type) Validate(_ context.Context) error {
	if !t.Kind.Valid() {
		return apperror.NewValidation("type kind must be INCOME or EXPENSE").
			WithDetail("field", "kind")
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(t.Name) > maxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", maxNameLength)
	}
	if t.DefaultAmount.IsNegative() {
		return apperror.NewValidation("default amount must not be negative").
			WithDetail("field", "defaultAmount")
	}
	if t.AppliesTo != "" {
		if !t.AppliesTo.Valid() {
			return apperror.NewValidation("unknown account kind").WithDetail("field", "appliesTo")
		}
		if !t.MonthlyRecurrence {
			return apperror.NewValidation("only recurring types can target accounts").
				WithDetail("field", "appliesTo")
		}
	}
	return nil
}

// Generates reports whether recurring generation produces movements of this type.
func (t *Type) Generates() bool {
	return t.Active && t.MonthlyRecurrence && t.AppliesTo != "" && t.DefaultAmount.IsPositive()
}
