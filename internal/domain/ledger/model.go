// Package ledger holds member, subscriber and vehicle account balances.
// Balances change only through movement posting, money movements, fuel
// reimbursement and administrative correction.
package ledger

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
)

// Account is the balance holder of one member, subscriber or vehicle.
type Account struct {
	entity.BaseEntity

	// Kind and OwnerID are immutable once the account is opened.
	Kind    entity.AccountKind `db:"kind" json:"kind"`
	OwnerID id.ID              `db:"owner_id" json:"ownerId"`

	// Balance is signed; negative balances are valid.
	Balance types.Money `db:"balance" json:"balance"`

	// LastModified is the business date of the last balance change.
	LastModified types.Date `db:"last_modified" json:"lastModified"`
}

// NewAccount creates an account with zero balance.
func NewAccount(kind entity.AccountKind, ownerID id.ID) *Account {
	return &Account{
		BaseEntity: entity.NewBaseEntity(),
		Kind:       kind,
		OwnerID:    ownerID,
		Balance:    types.Zero(),
	}
}

// Ref returns the typed reference of the account.
func (a *Account) Ref() entity.AccountRef {
	return entity.AccountRef{Kind: a.Kind, ID: a.ID}
}

// Validate checks account invariants.
func (a *Account) Validate(_ context.Context) error {
	if !a.Kind.Valid() {
		return apperror.NewValidation("unknown account kind").WithDetail("kind", string(a.Kind))
	}
	if id.IsNil(a.OwnerID) {
		return apperror.NewValidation("owner is required").WithDetail("field", "ownerId")
	}
	return nil
}

// Apply adds a signed delta and stamps the posting date.
func (a *Account) Apply(delta types.Money, date types.Date) {
	a.Balance = a.Balance.Add(delta)
	if !date.IsZero() {
		a.LastModified = date
	}
}
