package moneymovement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app"
	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/numerator"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/moneymovement"
	"taxiledger/internal/domain/payroll"
	"taxiledger/internal/domain/settlement"
)

var day = types.MustDate("15/03/2025")

func cashAmount(t *testing.T, f *apptest.Fixture) types.Money {
	t.Helper()
	reg, err := f.Cash.Get(f.Ctx)
	require.NoError(t, err)
	return reg.Amount
}

func TestCreate_CashIncomeWithoutAccount(t *testing.T) {
	f := apptest.New(t)

	m, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      entity.NoAccount(),
		Description:  "donation",
		Amount:       types.MustMoney("200"),
		Date:         day,
		MovementType: moneymovement.CategoryOther,
		IsIncome:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "CAJ-2025-00001", m.Number)
	apptest.AssertMoney(t, "200", cashAmount(t, f))

	second, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindNonCash,
		Account:      entity.NoAccount(),
		Amount:       types.MustMoney("50"),
		Date:         day,
		MovementType: moneymovement.CategoryOther,
	})
	require.NoError(t, err)
	assert.Equal(t, "MOV-2025-00001", second.Number)
	apptest.AssertMoney(t, "200", cashAmount(t, f), "non-cash movements leave the register alone")
}

func TestCreate_PostsToAccount(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	_, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      member.Ref(),
		Amount:       types.MustMoney("120.50"),
		Date:         day,
		MovementType: moneymovement.CategoryReceiptPayment,
		IsIncome:     true,
	})
	require.NoError(t, err)
	apptest.AssertMoney(t, "120.50", f.Balance(t, member.Ref()))
	apptest.AssertMoney(t, "120.50", cashAmount(t, f))

	_, err = f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      member.Ref(),
		Amount:       types.MustMoney("20.50"),
		Date:         day,
		MovementType: moneymovement.CategoryFuel,
	})
	require.NoError(t, err)
	apptest.AssertMoney(t, "100", f.Balance(t, member.Ref()))
	apptest.AssertMoney(t, "100", cashAmount(t, f))
}

func TestCreate_Validation(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	vehicle := f.Open(t, entity.AccountVehicle, "AB-123")

	cases := []struct {
		name string
		in   moneymovement.CreateInput
	}{
		{"zero amount", moneymovement.CreateInput{
			Kind: moneymovement.KindCash, Amount: types.Zero(), Date: day, MovementType: moneymovement.CategoryOther,
		}},
		{"unknown kind", moneymovement.CreateInput{
			Kind: "CHEQUE", Amount: types.MustMoney("1"), Date: day, MovementType: moneymovement.CategoryOther,
		}},
		{"unknown category", moneymovement.CreateInput{
			Kind: moneymovement.KindCash, Amount: types.MustMoney("1"), Date: day, MovementType: "GIFT",
		}},
		{"missing date", moneymovement.CreateInput{
			Kind: moneymovement.KindCash, Amount: types.MustMoney("1"), MovementType: moneymovement.CategoryOther,
		}},
		{"advance on vehicle", moneymovement.CreateInput{
			Kind: moneymovement.KindCash, Account: vehicle.Ref(), Amount: types.MustMoney("1"), Date: day,
			MovementType: moneymovement.CategoryAdvance,
		}},
		{"workshop order on member", moneymovement.CreateInput{
			Kind: moneymovement.KindCash, Account: member.Ref(), Amount: types.MustMoney("1"), Date: day,
			MovementType: moneymovement.CategoryWorkshopOrder,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.MoneyMovements.Create(f.Ctx, tc.in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
	apptest.AssertMoney(t, "0", cashAmount(t, f))
}

func TestDelete_ReversesAndCascades(t *testing.T) {
	f := apptest.New(t)
	vehicle := f.Open(t, entity.AccountVehicle, "AB-123")
	repair := f.Repair(t, vehicle.Ref(), "1000", "2025-03")

	pay, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      vehicle.Ref(),
		Amount:       types.MustMoney("400"),
		Date:         day,
		MovementType: moneymovement.CategoryWorkshopOrder,
		IsIncome:     true,
	})
	require.NoError(t, err)

	_, err = f.Settlements.Allocate(f.Ctx, settlement.AllocateInput{
		AccountMovementID: repair.ID,
		Payer:             entity.MovementPayer(pay.ID),
		Amount:            types.MustMoney("400"),
		Date:              day,
	})
	require.NoError(t, err)

	require.NoError(t, f.MoneyMovements.Delete(f.Ctx, pay.ID, day.AddDays(1)))

	apptest.AssertMoney(t, "0", cashAmount(t, f))
	apptest.AssertMoney(t, "0", f.Balance(t, vehicle.Ref()))

	got, err := f.Movements.Get(f.Ctx, repair.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "1000", got.Remaining())

	allocations, err := f.Settlements.ListByPayer(f.Ctx, entity.MovementPayer(pay.ID), false)
	require.NoError(t, err)
	assert.Empty(t, allocations)

	err = f.MoneyMovements.Delete(f.Ctx, pay.ID, day)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestAdvanceMovement(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	m, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      member.Ref(),
		Description:  "advance for tyres",
		Amount:       types.MustMoney("300"),
		Date:         day,
		MovementType: moneymovement.CategoryAdvance,
	})
	require.NoError(t, err)
	apptest.AssertMoney(t, "-300", cashAmount(t, f))

	advances, err := f.Payroll.ListAdvances(f.Ctx, member.ID, true)
	require.NoError(t, err)
	require.Len(t, advances, 1)
	require.NotNil(t, advances[0].MovementID)
	assert.Equal(t, m.ID, *advances[0].MovementID)
	apptest.AssertMoney(t, "300", advances[0].Amount)
	assert.Equal(t, "advance for tyres", advances[0].Notes)

	t.Run("unsettled advance is released on delete", func(t *testing.T) {
		require.NoError(t, f.MoneyMovements.Delete(f.Ctx, m.ID, day))

		advances, err := f.Payroll.ListAdvances(f.Ctx, member.ID, false)
		require.NoError(t, err)
		assert.Empty(t, advances)
		apptest.AssertMoney(t, "0", cashAmount(t, f))
	})

	t.Run("settled advance blocks delete", func(t *testing.T) {
		m, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
			Kind:         moneymovement.KindCash,
			Account:      member.Ref(),
			Amount:       types.MustMoney("100"),
			Date:         day,
			MovementType: moneymovement.CategoryAdvance,
		})
		require.NoError(t, err)

		advances, err := f.Payroll.ListAdvances(f.Ctx, member.ID, true)
		require.NoError(t, err)
		require.Len(t, advances, 1)

		_, err = f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
			MemberAccountID: member.ID,
			GrossSalary:     types.MustMoney("900"),
			Period:          types.MustPeriod("2025-03"),
			AdvanceIDs:      []id.ID{advances[0].ID},
		})
		require.NoError(t, err)

		err = f.MoneyMovements.Delete(f.Ctx, m.ID, day)
		assert.True(t, apperror.IsConflict(err), "got %v", err)

		still, err := f.MoneyMovements.Get(f.Ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, still.Active)
	})
}

func TestList(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	for i, date := range []string{"01/03/2025", "05/03/2025", "10/04/2025"} {
		_, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
			Kind:         moneymovement.KindCash,
			Account:      member.Ref(),
			Amount:       types.NewMoney(float64(10 * (i + 1))),
			Date:         types.MustDate(date),
			MovementType: moneymovement.CategoryOther,
			IsIncome:     true,
		})
		require.NoError(t, err)
	}

	result, err := f.MoneyMovements.List(f.Ctx, moneymovement.ListFilter{
		Account: member.Ref(),
		From:    types.MustDate("01/03/2025"),
		To:      types.MustDate("31/03/2025"),
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "05/03/2025", result.Items[0].Date.String())

	_, err = f.MoneyMovements.List(f.Ctx, moneymovement.ListFilter{
		From: types.MustDate("31/03/2025"),
		To:   types.MustDate("01/03/2025"),
	})
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestUpdateDescription(t *testing.T) {
	f := apptest.New(t)
	m, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindNonCash,
		Amount:       types.MustMoney("10"),
		Date:         day,
		MovementType: moneymovement.CategoryOther,
	})
	require.NoError(t, err)

	updated, err := f.MoneyMovements.UpdateDescription(f.Ctx, m.ID, "bank fee")
	require.NoError(t, err)
	assert.Equal(t, "bank fee", updated.Description)
	assert.Equal(t, m.Number, updated.Number)
}

func TestCreate_VoucherSeries(t *testing.T) {
	var got []numerator.Config
	var periods []time.Time
	gen := &numerator.MockGenerator{}
	gen.GetNextNumberFunc = func(_ context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
		got = append(got, cfg)
		periods = append(periods, period)
		return cfg.Prefix + "-TEST", nil
	}
	f := apptest.New(t, func(o *app.Options) { o.Numerator = gen })

	m, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      entity.NoAccount(),
		Amount:       types.MustMoney("10"),
		Date:         day,
		MovementType: moneymovement.CategoryOther,
		IsIncome:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "CAJ-TEST", m.Number)

	require.Len(t, got, 1)
	assert.Equal(t, numerator.DefaultConfig("CAJ"), got[0])
	assert.Equal(t, 2025, periods[0].Year())
}

func TestCreate_NumeratorFailureLeavesNoTrace(t *testing.T) {
	gen := &numerator.MockGenerator{
		GetNextNumberFunc: func(context.Context, numerator.Config, *numerator.Options, time.Time) (string, error) {
			return "", errors.New("sequence unavailable")
		},
	}
	f := apptest.New(t, func(o *app.Options) { o.Numerator = gen })

	_, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      entity.NoAccount(),
		Amount:       types.MustMoney("10"),
		Date:         day,
		MovementType: moneymovement.CategoryOther,
		IsIncome:     true,
	})
	require.ErrorContains(t, err, "sequence unavailable")

	list, err := f.MoneyMovements.List(f.Ctx, moneymovement.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	apptest.AssertMoney(t, "0", cashAmount(t, f))
}
