package receipt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/receipt"
)

func input(account entity.AccountRef, number, period string) receipt.CreateInput {
	return receipt.CreateInput{
		Account:       account,
		ReceiptNumber: number,
		BookletNumber: "7",
		ReceiptType:   "MONTHLY_FEE",
		Period:        types.MustPeriod(period),
		IssueDate:     types.MustDate("02/01/2025"),
	}
}

func TestCreate(t *testing.T) {
	f := apptest.New(t)
	subscriber := f.Open(t, entity.AccountSubscriber, "Radio Sur")

	r, err := f.Receipts.Create(f.Ctx, input(subscriber.Ref(), " 0042 ", "2025-01"))
	require.NoError(t, err)
	assert.Equal(t, "0042", r.ReceiptNumber)
	assert.Equal(t, subscriber.Ref(), r.Account)

	got, err := f.Receipts.Get(f.Ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ReceiptNumber, got.ReceiptNumber)
	assert.Equal(t, subscriber.Ref(), got.Account)

	t.Run("one receipt per account and period", func(t *testing.T) {
		_, err := f.Receipts.Create(f.Ctx, input(subscriber.Ref(), "0043", "2025-01"))
		assert.True(t, apperror.IsConflict(err), "got %v", err)
	})

	t.Run("number is unique", func(t *testing.T) {
		_, err := f.Receipts.Create(f.Ctx, input(subscriber.Ref(), "0042", "2025-02"))
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	})

	t.Run("same number in another booklet", func(t *testing.T) {
		in := input(subscriber.Ref(), "0042", "2025-02")
		in.BookletNumber = "8"
		_, err := f.Receipts.Create(f.Ctx, in)
		require.NoError(t, err)
	})
}

func TestCreate_Validation(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	vehicle := f.Open(t, entity.AccountVehicle, "AB-123")

	cases := []struct {
		name   string
		mutate func(*receipt.CreateInput)
	}{
		{"vehicle account", func(in *receipt.CreateInput) { in.Account = vehicle.Ref() }},
		{"no account", func(in *receipt.CreateInput) { in.Account = entity.NoAccount() }},
		{"blank number", func(in *receipt.CreateInput) { in.ReceiptNumber = "  " }},
		{"blank booklet", func(in *receipt.CreateInput) { in.BookletNumber = "" }},
		{"blank type", func(in *receipt.CreateInput) { in.ReceiptType = "" }},
		{"bad period", func(in *receipt.CreateInput) { in.Period = "2025-13" }},
		{"no issue date", func(in *receipt.CreateInput) { in.IssueDate = types.Date{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := input(member.Ref(), "1", "2025-01")
			tc.mutate(&in)
			_, err := f.Receipts.Create(f.Ctx, in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.Receipts.Create(f.Ctx, input(entity.MemberAccount(id.New()), "1", "2025-01"))
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})
}

func TestDelete(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")

	r, err := f.Receipts.Create(f.Ctx, input(member.Ref(), "1", "2025-01"))
	require.NoError(t, err)

	require.NoError(t, f.Receipts.Delete(f.Ctx, r.ID))

	err = f.Receipts.Delete(f.Ctx, r.ID)
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	err = f.Receipts.Delete(f.Ctx, id.New())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	result, err := f.Receipts.List(f.Ctx, receipt.ListFilter{Account: member.Ref()})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestList(t *testing.T) {
	f := apptest.New(t)
	ana := f.Member(t, "Ana")
	beto := f.Member(t, "Beto")

	for i, period := range []string{"2025-01", "2025-02"} {
		_, err := f.Receipts.Create(f.Ctx, input(ana.Ref(), "A"+period, period))
		require.NoError(t, err, "receipt %d", i)
	}
	_, err := f.Receipts.Create(f.Ctx, input(beto.Ref(), "B1", "2025-01"))
	require.NoError(t, err)

	result, err := f.Receipts.List(f.Ctx, receipt.ListFilter{Account: ana.Ref()})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)

	result, err = f.Receipts.List(f.Ctx, receipt.ListFilter{Period: types.MustPeriod("2025-01")})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}
