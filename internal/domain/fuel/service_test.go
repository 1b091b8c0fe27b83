package fuel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/fuel"
)

var start = types.MustDate("01/03/2025")

func newFixture(t *testing.T) *apptest.Fixture {
	t.Helper()
	f := apptest.New(t)
	fuel.SetClock(f.Fuel, func() types.Date { return start })
	return f
}

func TestAccumulate(t *testing.T) {
	f := newFixture(t)
	member := f.Member(t, "Ana")

	r, err := f.Fuel.Accumulate(f.Ctx, member.ID, types.MustMoney("200"), types.MustMoney("40"))
	require.NoError(t, err)
	apptest.AssertMoney(t, "80", r.AccumulatedAmount)
	assert.Equal(t, start.String(), r.CreatedDate.String())

	r, err = f.Fuel.Accumulate(f.Ctx, member.ID, types.MustMoney("33.33"), types.MustMoney("50"))
	require.NoError(t, err)
	apptest.AssertMoney(t, "96.67", r.AccumulatedAmount)

	got, err := f.Fuel.Get(f.Ctx, member.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "96.67", got.AccumulatedAmount)

	apptest.AssertMoney(t, "0", f.Balance(t, member.Ref()), "accumulating does not touch the balance")
}

func TestAccumulate_Rejections(t *testing.T) {
	f := newFixture(t)
	member := f.Member(t, "Ana")

	cases := []struct {
		name       string
		expense    string
		percentage string
	}{
		{"zero expense", "0", "50"},
		{"negative expense", "-10", "50"},
		{"negative percentage", "10", "-1"},
		{"percentage above 100", "10", "100.01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.Fuel.Accumulate(f.Ctx, member.ID, types.MustMoney(tc.expense), types.MustMoney(tc.percentage))
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	_, err := f.Fuel.Accumulate(f.Ctx, id.New(), types.MustMoney("10"), types.MustMoney("10"))
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestReimburse(t *testing.T) {
	f := newFixture(t)
	member := f.Member(t, "Ana")

	_, err := f.Fuel.Reimburse(f.Ctx, member.ID, start)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	_, err = f.Fuel.Accumulate(f.Ctx, member.ID, types.MustMoney("150"), types.MustMoney("100"))
	require.NoError(t, err)

	paid, err := f.Fuel.Reimburse(f.Ctx, member.ID, types.Date{})
	require.NoError(t, err)
	apptest.AssertMoney(t, "150", paid)
	apptest.AssertMoney(t, "150", f.Balance(t, member.Ref()))

	r, err := f.Fuel.Get(f.Ctx, member.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "0", r.AccumulatedAmount)
	assert.Equal(t, start.String(), r.LastReimbursementDate.String())

	_, err = f.Fuel.Reimburse(f.Ctx, member.ID, start)
	assert.True(t, apperror.IsConflict(err), "got %v", err)
}

func TestReimburseDue(t *testing.T) {
	f := newFixture(t)
	ana := f.Member(t, "Ana")
	beto := f.Member(t, "Beto")

	_, err := f.Fuel.Accumulate(f.Ctx, ana.ID, types.MustMoney("100"), types.MustMoney("50"))
	require.NoError(t, err)
	_, err = f.Fuel.Accumulate(f.Ctx, beto.ID, types.MustMoney("100"), types.MustMoney("25"))
	require.NoError(t, err)

	early := start.AddDays(fuel.ReimbursementInterval - 1)
	report, err := f.Fuel.ReimburseDue(f.Ctx, early)
	require.NoError(t, err)
	assert.Zero(t, report.Reimbursed)
	apptest.AssertMoney(t, "0", report.Total)

	due := start.AddDays(fuel.ReimbursementInterval)
	report, err = f.Fuel.ReimburseDue(f.Ctx, due)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Reimbursed)
	assert.Zero(t, report.Failed)
	apptest.AssertMoney(t, "75", report.Total)
	apptest.AssertMoney(t, "50", f.Balance(t, ana.Ref()))
	apptest.AssertMoney(t, "25", f.Balance(t, beto.Ref()))

	t.Run("interval restarts at the last reimbursement", func(t *testing.T) {
		_, err := f.Fuel.Accumulate(f.Ctx, ana.ID, types.MustMoney("10"), types.MustMoney("100"))
		require.NoError(t, err)

		report, err := f.Fuel.ReimburseDue(f.Ctx, due.AddDays(1))
		require.NoError(t, err)
		assert.Zero(t, report.Reimbursed)

		report, err = f.Fuel.ReimburseDue(f.Ctx, due.AddDays(fuel.ReimbursementInterval))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Reimbursed)
		apptest.AssertMoney(t, "10", report.Total)
	})
}
