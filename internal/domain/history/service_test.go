package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
)

var period = types.MustPeriod("2025-01")

func TestCloseMonth(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	_, err := f.Ledger.AdjustBalance(f.Ctx, member.Ref(), types.MustMoney("-320.40"), types.MustDate("15/01/2025"))
	require.NoError(t, err)

	h, err := f.History.CloseMonth(f.Ctx, member.Ref(), period)
	require.NoError(t, err)
	apptest.AssertMoney(t, "-320.40", h.MonthEndBalance)
	assert.Equal(t, "01/02/2025", h.RegistrationDate.String())

	_, err = f.History.CloseMonth(f.Ctx, member.Ref(), period)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err), "got %v", err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)

	t.Run("deleted snapshot can be retaken", func(t *testing.T) {
		_, err := f.Ledger.AdjustBalance(f.Ctx, member.Ref(), types.MustMoney("20.40"), types.MustDate("31/01/2025"))
		require.NoError(t, err)
		require.NoError(t, f.History.Delete(f.Ctx, h.ID))

		again, err := f.History.CloseMonth(f.Ctx, member.Ref(), period)
		require.NoError(t, err)
		apptest.AssertMoney(t, "-300", again.MonthEndBalance)

		rows, err := f.History.List(f.Ctx, member.Ref())
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := f.History.CloseMonth(f.Ctx, entity.NoAccount(), period)
		assert.True(t, apperror.IsValidation(err), "got %v", err)

		_, err = f.History.CloseMonth(f.Ctx, member.Ref(), "January")
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	})
}

func TestCloseMonthAll(t *testing.T) {
	f := apptest.New(t)
	accounts := []entity.AccountRef{
		f.Member(t, "Ana").Ref(),
		f.Member(t, "Beto").Ref(),
		f.Open(t, entity.AccountSubscriber, "Radio Sur").Ref(),
		f.Open(t, entity.AccountVehicle, "AB-123").Ref(),
		f.Open(t, entity.AccountVehicle, "CD-456").Ref(),
	}
	retired := f.Member(t, "Carla")
	require.NoError(t, f.Ledger.Deactivate(f.Ctx, retired.Ref()))

	report, err := f.History.CloseMonthAll(f.Ctx, period)
	require.NoError(t, err)
	assert.Equal(t, len(accounts), report.Closed)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)

	report, err = f.History.CloseMonthAll(f.Ctx, period)
	require.NoError(t, err)
	assert.Zero(t, report.Closed)
	assert.Equal(t, len(accounts), report.Skipped)

	for _, ref := range accounts {
		rows, err := f.History.List(f.Ctx, ref)
		require.NoError(t, err)
		assert.Len(t, rows, 1, ref.String())
	}
	rows, err := f.History.List(f.Ctx, retired.Ref())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
