package settlement_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/domain/ledger"
	"taxiledger/internal/domain/moneymovement"
	"taxiledger/internal/domain/payroll"
	"taxiledger/internal/domain/receipt"
	"taxiledger/internal/domain/settlement"
)

var day = types.MustDate("10/01/2025")

func money(s string) types.Money { return types.MustMoney(s) }

func payment(t *testing.T, f *apptest.Fixture, account *ledger.Account, amount string) *moneymovement.MoneyMovement {
	t.Helper()
	category := moneymovement.CategoryReceiptPayment
	if account.Kind == entity.AccountVehicle {
		category = moneymovement.CategoryWorkshopOrder
	}
	m, err := f.MoneyMovements.Create(f.Ctx, moneymovement.CreateInput{
		Kind:         moneymovement.KindCash,
		Account:      account.Ref(),
		Description:  "payment",
		Amount:       money(amount),
		Date:         day,
		MovementType: category,
		IsIncome:     true,
	})
	require.NoError(t, err)
	return m
}

func allocate(f *apptest.Fixture, movementID id.ID, payer entity.PayerRef, amount string) (*settlement.Allocation, error) {
	return f.Settlements.Allocate(f.Ctx, settlement.AllocateInput{
		AccountMovementID: movementID,
		Payer:             payer,
		Amount:            money(amount),
		Date:              day,
	})
}

func TestAllocate_RepairExample(t *testing.T) {
	f := apptest.New(t)
	vehicle := f.Open(t, entity.AccountVehicle, "AB-123")
	repair := f.Repair(t, vehicle.Ref(), "1000", "2025-01")
	pay := payment(t, f, vehicle, "1100")

	first, err := allocate(f, repair.ID, entity.MovementPayer(pay.ID), "400")
	require.NoError(t, err)

	got, err := f.Movements.Get(f.Ctx, repair.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "600", got.Remaining())

	_, err = allocate(f, repair.ID, entity.MovementPayer(pay.ID), "700")
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	got, err = f.Movements.Get(f.Ctx, repair.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "600", got.Remaining())

	t.Run("delete restores remaining", func(t *testing.T) {
		require.NoError(t, f.Settlements.Delete(f.Ctx, first.ID))

		got, err := f.Movements.Get(f.Ctx, repair.ID)
		require.NoError(t, err)
		apptest.AssertMoney(t, "1000", got.Remaining())

		err = f.Settlements.Delete(f.Ctx, first.ID)
		assert.True(t, apperror.IsConflict(err), "inactive is terminal, got %v", err)
	})
}

func TestAllocate_SumNeverExceedsAmount(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	expense := f.Expense(t, member.Ref(), "500", "2025-01")
	pay := payment(t, f, member, "1000")

	_, err := allocate(f, expense.ID, entity.MovementPayer(pay.ID), "300")
	require.NoError(t, err)
	_, err = allocate(f, expense.ID, entity.MovementPayer(pay.ID), "200")
	require.NoError(t, err)

	_, err = allocate(f, expense.ID, entity.MovementPayer(pay.ID), "0.01")
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	summary, err := f.Settlements.Summary(f.Ctx, expense.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "500", summary.Allocated)
	apptest.AssertMoney(t, "0", summary.Outstanding)
	assert.True(t, summary.FullyPaid)
	assert.Equal(t, 2, summary.Allocations)

	t.Run("modify re-checks the sum", func(t *testing.T) {
		allocations, err := f.Settlements.ListByMovement(f.Ctx, expense.ID, false)
		require.NoError(t, err)
		require.Len(t, allocations, 2)

		over := money("301")
		_, err = f.Settlements.Modify(f.Ctx, allocations[0].ID, settlement.ModifyInput{Amount: &over})
		assert.True(t, apperror.IsValidation(err), "got %v", err)

		less := money("250")
		modified, err := f.Settlements.Modify(f.Ctx, allocations[0].ID, settlement.ModifyInput{Amount: &less})
		require.NoError(t, err)
		apptest.AssertMoney(t, "250", modified.AllocatedAmount)
	})
}

func TestAllocate_PayerChecks(t *testing.T) {
	f := apptest.New(t)
	ana := f.Member(t, "Ana")
	beto := f.Member(t, "Beto")
	expense := f.Expense(t, ana.Ref(), "100", "2025-01")

	t.Run("unknown payer", func(t *testing.T) {
		_, err := allocate(f, expense.ID, entity.ReceiptPayer(id.New()), "10")
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})

	t.Run("payer of another account", func(t *testing.T) {
		pay := payment(t, f, beto, "10")
		_, err := allocate(f, expense.ID, entity.MovementPayer(pay.ID), "10")
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	})

	t.Run("no payer", func(t *testing.T) {
		_, err := allocate(f, expense.ID, entity.PayerRef{}, "10")
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		pay := payment(t, f, ana, "10")
		_, err := allocate(f, expense.ID, entity.MovementPayer(pay.ID), "0")
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	})

	t.Run("unknown movement", func(t *testing.T) {
		pay := payment(t, f, ana, "10")
		_, err := allocate(f, id.New(), entity.MovementPayer(pay.ID), "10")
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})
}

func TestImmutability(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	expense := f.Expense(t, member.Ref(), "1000", "2025-01")

	rc, err := f.Receipts.Create(f.Ctx, receipt.CreateInput{
		Account:       member.Ref(),
		ReceiptNumber: "0001",
		BookletNumber: "12",
		ReceiptType:   "MONTHLY_FEE",
		Period:        types.MustPeriod("2025-01"),
		IssueDate:     day,
	})
	require.NoError(t, err)

	payslip, err := f.Payroll.CreateSettlement(f.Ctx, payroll.SettlementInput{
		MemberAccountID: member.ID,
		GrossSalary:     money("800"),
		Period:          types.MustPeriod("2025-01"),
	})
	require.NoError(t, err)

	for _, payer := range []entity.PayerRef{entity.ReceiptPayer(rc.ID), entity.SettlementPayer(payslip.ID)} {
		t.Run(string(payer.Kind), func(t *testing.T) {
			a, err := allocate(f, expense.ID, payer, "100")
			require.NoError(t, err)

			amount := money("50")
			_, err = f.Settlements.Modify(f.Ctx, a.ID, settlement.ModifyInput{Amount: &amount})
			assert.True(t, apperror.IsImmutability(err), "got %v", err)

			err = f.Settlements.Delete(f.Ctx, a.ID)
			assert.True(t, apperror.IsImmutability(err), "got %v", err)

			_, err = f.Settlements.DeleteByPayer(f.Ctx, payer)
			assert.True(t, apperror.IsImmutability(err), "got %v", err)

			noted, err := f.Settlements.EditNote(f.Ctx, a.ID, "paid at the counter")
			require.NoError(t, err)
			assert.Equal(t, "paid at the counter", noted.Note)
			apptest.AssertMoney(t, "100", noted.AllocatedAmount)
		})
	}

	t.Run("receipt backing allocations cannot be deleted", func(t *testing.T) {
		err := f.Receipts.Delete(f.Ctx, rc.ID)
		assert.True(t, apperror.IsImmutability(err), "got %v", err)
	})
}

func TestDeleteByPayer(t *testing.T) {
	f := apptest.New(t)
	vehicle := f.Open(t, entity.AccountVehicle, "AB-123")
	repairA := f.Repair(t, vehicle.Ref(), "300", "2025-01")
	repairB := f.Repair(t, vehicle.Ref(), "200", "2025-01")
	pay := payment(t, f, vehicle, "500")

	_, err := allocate(f, repairA.ID, entity.MovementPayer(pay.ID), "300")
	require.NoError(t, err)
	_, err = allocate(f, repairB.ID, entity.MovementPayer(pay.ID), "150")
	require.NoError(t, err)

	released, err := f.Settlements.DeleteByPayer(f.Ctx, entity.MovementPayer(pay.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, released)

	for _, m := range []id.ID{repairA.ID, repairB.ID} {
		got, err := f.Movements.Get(f.Ctx, m)
		require.NoError(t, err)
		apptest.AssertMoney(t, got.Amount.String(), got.Remaining())
	}

	all, err := f.Settlements.ListByPayer(f.Ctx, entity.MovementPayer(pay.ID), true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, a := range all {
		assert.False(t, a.Active)
	}
}

func TestAllocations_BlockMovementDelete(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	expense := f.Expense(t, member.Ref(), "100", "2025-01")
	pay := payment(t, f, member, "100")

	_, err := allocate(f, expense.ID, entity.MovementPayer(pay.ID), "40")
	require.NoError(t, err)

	err = f.Movements.Delete(f.Ctx, expense.ID)
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	small := money("30")
	_, err = f.Movements.Update(f.Ctx, expense.ID, accountmovementAmount(small))
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func accountmovementAmount(amount types.Money) accountmovement.UpdateInput {
	return accountmovement.UpdateInput{Amount: &amount}
}

func TestAllocate_Concurrent(t *testing.T) {
	f := apptest.New(t)
	vehicle := f.Open(t, entity.AccountVehicle, "AB-123")
	repair := f.Repair(t, vehicle.Ref(), "1000", "2025-01")
	pay := payment(t, f, vehicle, "2000")

	const workers = 20
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = allocate(f, repair.ID, entity.MovementPayer(pay.ID), "100")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, apperror.IsValidation(err), "got %v", err)
	}
	assert.Equal(t, 10, created)

	got, err := f.Movements.Get(f.Ctx, repair.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "0", got.Remaining())

	summary, err := f.Settlements.Summary(f.Ctx, repair.ID)
	require.NoError(t, err)
	apptest.AssertMoney(t, "1000", summary.Allocated)
	assert.Equal(t, 10, summary.Allocations)
	assert.True(t, summary.FullyPaid)
}

func TestAllocate_RacingReceiptDelete(t *testing.T) {
	for round := range 10 {
		f := apptest.New(t)
		member := f.Member(t, "Ana")
		expense := f.Expense(t, member.Ref(), "100", "2025-01")
		rc, err := f.Receipts.Create(f.Ctx, receipt.CreateInput{
			Account:       member.Ref(),
			ReceiptNumber: "0001",
			BookletNumber: "12",
			ReceiptType:   "MONTHLY_FEE",
			Period:        types.MustPeriod("2025-01"),
			IssueDate:     day,
		})
		require.NoError(t, err)

		var allocErr, deleteErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, allocErr = allocate(f, expense.ID, entity.ReceiptPayer(rc.ID), "100")
		}()
		go func() {
			defer wg.Done()
			deleteErr = f.Receipts.Delete(f.Ctx, rc.ID)
		}()
		wg.Wait()

		allocations, err := f.Settlements.ListByPayer(f.Ctx, entity.ReceiptPayer(rc.ID), false)
		require.NoError(t, err)

		if allocErr == nil {
			assert.True(t, apperror.IsImmutability(deleteErr), "round %d: got %v", round, deleteErr)
			assert.Len(t, allocations, 1)
			got, err := f.Receipts.Get(f.Ctx, rc.ID)
			require.NoError(t, err)
			assert.True(t, got.Active)
		} else {
			assert.True(t, apperror.IsNotFound(allocErr), "round %d: got %v", round, allocErr)
			assert.NoError(t, deleteErr)
			assert.Empty(t, allocations)
		}
	}
}
