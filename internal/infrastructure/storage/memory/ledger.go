package memory

import (
	"context"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/ledger"
)

// AccountRepo implements ledger.Repository.
type AccountRepo struct{ s *Store }

var _ ledger.Repository = (*AccountRepo)(nil)

// Accounts returns the account repository.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

func (r *AccountRepo) Create(ctx context.Context, a *ledger.Account) error {
	return r.s.do(ctx, func() error {
		if _, dup := r.s.accounts.find(func(e *ledger.Account) bool {
			return e.Kind == a.Kind && e.OwnerID == a.OwnerID
		}); dup {
			return apperror.NewDuplicate("account", "owner", a.OwnerID.String())
		}
		return r.s.accounts.insert(a)
	})
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (a *ledger.Account, err error) {
	err = r.s.do(ctx, func() error {
		a, err = r.s.accounts.get(accountID)
		return err
	})
	return a, err
}

// GetForUpdate is GetByID; the store lock serializes writers.
func (r *AccountRepo) GetForUpdate(ctx context.Context, accountID id.ID) (*ledger.Account, error) {
	return r.GetByID(ctx, accountID)
}

func (r *AccountRepo) GetByOwner(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (a *ledger.Account, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		a, ok = r.s.accounts.find(func(e *ledger.Account) bool {
			return e.Active && e.Kind == kind && e.OwnerID == ownerID
		})
		if !ok {
			return apperror.NewNotFound("account", ownerID.String())
		}
		return nil
	})
	return a, err
}

func (r *AccountRepo) Update(ctx context.Context, a *ledger.Account) error {
	return r.s.do(ctx, func() error { return r.s.accounts.update(a) })
}

func (r *AccountRepo) List(ctx context.Context, filter ledger.ListFilter) (result domain.ListResult[*ledger.Account], err error) {
	err = r.s.do(ctx, func() error {
		items := r.s.accounts.filter(func(e *ledger.Account) bool {
			return (filter.IncludeInactive || e.Active) &&
				(filter.Kind == "" || e.Kind == filter.Kind) &&
				wanted(filter.IDs, e.ID)
		})
		result = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return result, err
}
