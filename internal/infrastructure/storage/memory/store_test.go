package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/ledger"
)

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	accounts := s.Accounts()

	kept := ledger.NewAccount(entity.AccountMember, id.New())
	require.NoError(t, accounts.Create(ctx, kept))

	boom := errors.New("boom")
	var added *ledger.Account
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		added = ledger.NewAccount(entity.AccountVehicle, id.New())
		if err := accounts.Create(ctx, added); err != nil {
			return err
		}

		current, err := accounts.GetForUpdate(ctx, kept.ID)
		if err != nil {
			return err
		}
		current.Balance = types.MustMoney("10")
		if err := accounts.Update(ctx, current); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = accounts.GetByID(ctx, added.ID)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	got, err := accounts.GetByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, kept.Version, got.Version)
}

func TestRunInTransaction_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := ledger.NewAccount(entity.AccountMember, id.New())

	assert.Panics(t, func() {
		_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Accounts().Create(ctx, a))
			panic("boom")
		})
	})

	_, err := s.Accounts().GetByID(ctx, a.ID)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestRunInTransaction_Nested(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := ledger.NewAccount(entity.AccountMember, id.New())

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Accounts().Create(ctx, a)
		})
	})
	require.NoError(t, err)

	_, err = s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
}

func TestTable_OptimisticLock(t *testing.T) {
	ctx := context.Background()
	accounts := NewStore().Accounts()

	a := ledger.NewAccount(entity.AccountMember, id.New())
	require.NoError(t, accounts.Create(ctx, a))

	first, err := accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	stale, err := accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)

	first.Balance = types.MustMoney("5")
	require.NoError(t, accounts.Update(ctx, first))
	assert.Equal(t, a.Version+1, first.Version)

	stale.Balance = types.MustMoney("7")
	err = accounts.Update(ctx, stale)
	assert.True(t, apperror.IsConcurrentModification(err), "got %v", err)

	got, err := accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(types.MustMoney("5")))
}

func TestTable_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	accounts := NewStore().Accounts()

	a := ledger.NewAccount(entity.AccountMember, id.New())
	require.NoError(t, accounts.Create(ctx, a))
	a.Balance = types.MustMoney("99")

	got, err := accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())

	got.Balance = types.MustMoney("1")
	again, err := accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, again.Balance.IsZero())
}

func TestAccountRepo_DuplicateOwner(t *testing.T) {
	ctx := context.Background()
	accounts := NewStore().Accounts()
	owner := id.New()

	require.NoError(t, accounts.Create(ctx, ledger.NewAccount(entity.AccountMember, owner)))
	err := accounts.Create(ctx, ledger.NewAccount(entity.AccountMember, owner))
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	require.NoError(t, accounts.Create(ctx, ledger.NewAccount(entity.AccountVehicle, owner)))
}
