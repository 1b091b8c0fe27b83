package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/ledger"
)

func TestOpenAccount(t *testing.T) {
	f := apptest.New(t)

	t.Run("starts at zero", func(t *testing.T) {
		account := f.Member(t, "Ana")
		assert.True(t, account.Active)
		apptest.AssertMoney(t, "0", account.Balance)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := f.Ledger.OpenAccount(f.Ctx, entity.AccountMember, id.New())
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})

	t.Run("second account for owner", func(t *testing.T) {
		ownerID := f.Directory.Register(entity.AccountVehicle, "AB-123")
		_, err := f.Ledger.OpenAccount(f.Ctx, entity.AccountVehicle, ownerID)
		require.NoError(t, err)

		_, err = f.Ledger.OpenAccount(f.Ctx, entity.AccountVehicle, ownerID)
		assert.True(t, apperror.IsConflict(err), "got %v", err)
	})

	t.Run("owner registered under another kind", func(t *testing.T) {
		ownerID := f.Directory.Register(entity.AccountSubscriber, "Beto")
		_, err := f.Ledger.OpenAccount(f.Ctx, entity.AccountMember, ownerID)
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})
}

func TestAdjustBalance(t *testing.T) {
	f := apptest.New(t)
	account := f.Member(t, "Ana")
	date := types.MustDate("15/01/2025")

	balance, err := f.Ledger.AdjustBalance(f.Ctx, account.Ref(), types.MustMoney("-120.50"), date)
	require.NoError(t, err)
	apptest.AssertMoney(t, "-120.50", balance)

	got, err := f.Ledger.Get(f.Ctx, account.Ref())
	require.NoError(t, err)
	assert.True(t, got.LastModified.Equal(date))
	assert.Equal(t, 2, got.Version)

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := f.Ledger.AdjustBalance(f.Ctx, entity.VehicleAccount(account.ID), types.MustMoney("1"), date)
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := f.Ledger.AdjustBalance(f.Ctx, entity.NoAccount(), types.MustMoney("1"), date)
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	})
}

func TestCorrect(t *testing.T) {
	f := apptest.New(t)
	account := f.Member(t, "Ana")
	date := types.MustDate("31/01/2025")

	_, err := f.Ledger.Correct(f.Ctx, account.Ref(), types.MustMoney("10"), date, "")
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	corrected, err := f.Ledger.Correct(f.Ctx, account.Ref(), types.MustMoney("250"), date, "opening balance")
	require.NoError(t, err)
	apptest.AssertMoney(t, "250", corrected.Balance)

	warnings := f.Logs.FilterMessage("balance corrected").FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, "opening balance", warnings.All()[0].ContextMap()["reason"])
}

func TestDeactivate(t *testing.T) {
	f := apptest.New(t)
	account := f.Member(t, "Ana")
	date := types.MustDate("01/02/2025")

	_, err := f.Ledger.AdjustBalance(f.Ctx, account.Ref(), types.MustMoney("5"), date)
	require.NoError(t, err)

	err = f.Ledger.Deactivate(f.Ctx, account.Ref())
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	_, err = f.Ledger.AdjustBalance(f.Ctx, account.Ref(), types.MustMoney("-5"), date)
	require.NoError(t, err)
	require.NoError(t, f.Ledger.Deactivate(f.Ctx, account.Ref()))

	_, err = f.Ledger.GetBalance(f.Ctx, account.Ref())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	active, err := f.Ledger.ActiveAccounts(f.Ctx, entity.AccountMember)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestList(t *testing.T) {
	f := apptest.New(t)
	f.Member(t, "Ana")
	f.Member(t, "Beto")
	f.Open(t, entity.AccountVehicle, "AB-123")

	result, err := f.Ledger.List(f.Ctx, ledger.ListFilter{Kind: entity.AccountMember})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.TotalCount)

	all, err := f.Ledger.ActiveAccounts(f.Ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
