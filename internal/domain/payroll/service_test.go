package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/payroll"
)

var (
	day    = types.MustDate("20/01/2025")
	period = types.MustPeriod("2025-01")
)

func advance(t *testing.T, f *apptest.Fixture, member id.ID, amount string) *payroll.Advance {
	t.Helper()
	a, err := f.Payroll.CreateAdvance(f.Ctx, payroll.AdvanceInput{
		MemberAccountID: member,
		Date:            day,
		Amount:          types.MustMoney(amount),
	})
	require.NoError(t, err)
	return a
}

func TestCreateSettlement_ComputesNet(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	a1 := advance(t, f, member.ID, "150")
	a2 := advance(t, f, member.ID, "50.25")

	s, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
		MemberAccountID: member.ID,
		GrossSalary:     types.MustMoney("1000"),
		Period:          period,
		AdvanceIDs:      []id.ID{a1.ID, a2.ID},
	})
	require.NoError(t, err)
	apptest.AssertMoney(t, "799.75", s.NetSalary)
	assert.False(t, s.Paid())

	got, err := f.Payroll.GetSettlement(f.Ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.Advances, 2)
	for _, a := range got.Advances {
		require.NotNil(t, a.PayrollSettlementID)
		assert.Equal(t, s.ID, *a.PayrollSettlementID)
	}

	unsettled, err := f.Payroll.ListAdvances(f.Ctx, member.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unsettled)

	t.Run("explicit net is kept", func(t *testing.T) {
		net := types.MustMoney("700")
		s, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
			MemberAccountID: member.ID,
			GrossSalary:     types.MustMoney("1000"),
			Period:          types.MustPeriod("2025-02"),
			NetSalary:       &net,
		})
		require.NoError(t, err)
		apptest.AssertMoney(t, "700", s.NetSalary)
	})

	t.Run("one settlement per member and period", func(t *testing.T) {
		_, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
			MemberAccountID: member.ID,
			GrossSalary:     types.MustMoney("1"),
			Period:          period,
		})
		assert.True(t, apperror.IsConflict(err), "got %v", err)
	})
}

func TestCreateSettlement_Rejections(t *testing.T) {
	f := apptest.New(t)
	ana := f.Member(t, "Ana")
	beto := f.Member(t, "Beto")
	big := advance(t, f, ana.ID, "2000")
	foreign := advance(t, f, beto.ID, "10")

	cases := []struct {
		name     string
		in       payroll.SettlementInput
		notFound bool
	}{
		{"advances exceed gross", payroll.SettlementInput{
			MemberAccountID: ana.ID, GrossSalary: types.MustMoney("1000"), Period: period, AdvanceIDs: []id.ID{big.ID},
		}, false},
		{"advance of another member", payroll.SettlementInput{
			MemberAccountID: ana.ID, GrossSalary: types.MustMoney("1000"), Period: period, AdvanceIDs: []id.ID{foreign.ID},
		}, false},
		{"advance listed twice", payroll.SettlementInput{
			MemberAccountID: beto.ID, GrossSalary: types.MustMoney("1000"), Period: period, AdvanceIDs: []id.ID{foreign.ID, foreign.ID},
		}, false},
		{"negative gross", payroll.SettlementInput{
			MemberAccountID: ana.ID, GrossSalary: types.MustMoney("-1"), Period: period,
		}, false},
		{"bad period", payroll.SettlementInput{
			MemberAccountID: ana.ID, GrossSalary: types.MustMoney("1"), Period: "2025/01",
		}, false},
		{"unknown advance", payroll.SettlementInput{
			MemberAccountID: ana.ID, GrossSalary: types.MustMoney("1000"), Period: period, AdvanceIDs: []id.ID{id.New()},
		}, true},
		{"unknown member", payroll.SettlementInput{
			MemberAccountID: id.New(), GrossSalary: types.MustMoney("1000"), Period: period,
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.Payroll.CreateSettlement(f.Ctx, tc.in)
			if tc.notFound {
				assert.True(t, apperror.IsNotFound(err), "got %v", err)
				return
			}
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	unsettled, err := f.Payroll.ListAdvances(f.Ctx, ana.ID, true)
	require.NoError(t, err)
	assert.Len(t, unsettled, 1, "rejected settlements link nothing")
}

func TestLinkAdvance(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	s, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
		MemberAccountID: member.ID,
		GrossSalary:     types.MustMoney("500"),
		Period:          period,
	})
	require.NoError(t, err)

	a := advance(t, f, member.ID, "100")
	linked, err := f.Payroll.LinkAdvance(f.Ctx, a.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, linked.Settled())

	t.Run("links are permanent", func(t *testing.T) {
		other, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
			MemberAccountID: member.ID,
			GrossSalary:     types.MustMoney("500"),
			Period:          types.MustPeriod("2025-02"),
		})
		require.NoError(t, err)

		_, err = f.Payroll.LinkAdvance(f.Ctx, a.ID, other.ID)
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	})

	t.Run("paid settlements absorb nothing", func(t *testing.T) {
		_, err := f.Payroll.MarkPaid(f.Ctx, s.ID, day)
		require.NoError(t, err)

		late := advance(t, f, member.ID, "20")
		_, err = f.Payroll.LinkAdvance(f.Ctx, late.ID, s.ID)
		assert.True(t, apperror.IsConflict(err), "got %v", err)
	})
}

func TestMarkPaid(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	s, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
		MemberAccountID: member.ID,
		GrossSalary:     types.MustMoney("500"),
		Period:          period,
	})
	require.NoError(t, err)

	_, err = f.Payroll.MarkPaid(f.Ctx, s.ID, types.Date{})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	paid, err := f.Payroll.MarkPaid(f.Ctx, s.ID, day)
	require.NoError(t, err)
	assert.True(t, paid.Paid())
	assert.Equal(t, day.String(), paid.PaymentDate.String())

	_, err = f.Payroll.MarkPaid(f.Ctx, s.ID, day.AddDays(1))
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	_, err = f.Payroll.MarkPaid(f.Ctx, id.New(), day)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestComputeNet(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	a1 := advance(t, f, member.ID, "100")
	a2 := advance(t, f, member.ID, "33.33")

	net, err := f.Payroll.ComputeNet(f.Ctx, types.MustMoney("500"), []id.ID{a1.ID, a2.ID})
	require.NoError(t, err)
	apptest.AssertMoney(t, "366.67", net)

	net, err = f.Payroll.ComputeNet(f.Ctx, types.MustMoney("500"), nil)
	require.NoError(t, err)
	apptest.AssertMoney(t, "500", net)

	_, err = f.Payroll.ComputeNet(f.Ctx, types.MustMoney("500"), []id.ID{id.New()})
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestCreateAdvance_Validation(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	_, err := f.Payroll.CreateAdvance(f.Ctx, payroll.AdvanceInput{MemberAccountID: member.ID, Date: day, Amount: types.Zero()})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	_, err = f.Payroll.CreateAdvance(f.Ctx, payroll.AdvanceInput{MemberAccountID: member.ID, Amount: types.MustMoney("1")})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	_, err = f.Payroll.CreateAdvance(f.Ctx, payroll.AdvanceInput{MemberAccountID: id.New(), Date: day, Amount: types.MustMoney("1")})
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}
