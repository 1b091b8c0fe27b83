package cash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/registers/cash"
)

func TestBootstrap(t *testing.T) {
	f := apptest.New(t)

	again, err := f.Cash.Bootstrap(f.Ctx)
	require.NoError(t, err)
	assert.Equal(t, cash.RegisterID, again.ID)

	reg, err := f.Cash.Get(f.Ctx)
	require.NoError(t, err)
	apptest.AssertMoney(t, "0", reg.Amount)
}

func TestAdjust_MayGoNegative(t *testing.T) {
	f := apptest.New(t)

	amount, err := f.Cash.Adjust(f.Ctx, types.MustMoney("100"))
	require.NoError(t, err)
	apptest.AssertMoney(t, "100", amount)

	amount, err = f.Cash.Adjust(f.Ctx, types.MustMoney("-250.10"))
	require.NoError(t, err)
	apptest.AssertMoney(t, "-150.10", amount)
}

func TestOpenCloseDay(t *testing.T) {
	f := apptest.New(t)
	day := types.MustDate("03/02/2025")

	_, err := f.Cash.Adjust(f.Ctx, types.MustMoney("80"))
	require.NoError(t, err)

	opened, err := f.Cash.OpenDay(f.Ctx, day)
	require.NoError(t, err)
	apptest.AssertMoney(t, "80", opened.InitialAmount)
	assert.False(t, opened.Closed())

	_, err = f.Cash.OpenDay(f.Ctx, day)
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	_, err = f.Cash.Adjust(f.Ctx, types.MustMoney("20"))
	require.NoError(t, err)

	closed, err := f.Cash.CloseDay(f.Ctx, day)
	require.NoError(t, err)
	require.True(t, closed.Closed())
	apptest.AssertMoney(t, "100", *closed.FinalAmount)

	_, err = f.Cash.CloseDay(f.Ctx, day)
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	_, err = f.Cash.CloseDay(f.Ctx, day.AddDays(1))
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	_, err = f.Cash.OpenDay(f.Ctx, types.Date{})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	t.Run("list days", func(t *testing.T) {
		_, err := f.Cash.OpenDay(f.Ctx, day.AddDays(1))
		require.NoError(t, err)

		days, err := f.Cash.ListDays(f.Ctx, day, day.AddDays(1))
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, day.String(), days[0].Date.String())
		apptest.AssertMoney(t, "100", days[1].InitialAmount)

		days, err = f.Cash.ListDays(f.Ctx, day.AddDays(1), types.Date{})
		require.NoError(t, err)
		assert.Len(t, days, 1)
	})
}
