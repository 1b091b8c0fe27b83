package jobs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/domain/jobs"
	"taxiledger/internal/domain/catalogs/movementtype"
)

func TestJob_Validate(t *testing.T) {
	cases := []struct {
		name  string
		job   jobs.Job
		valid bool
	}{
		{"recurring with period", jobs.Job{Name: jobs.GenerateRecurring, Period: "2025-05"}, true},
		{"recurring without period", jobs.Job{Name: jobs.GenerateRecurring}, false},
		{"close month with bad period", jobs.Job{Name: jobs.CloseMonth, Period: "2025-5"}, false},
		{"open day defaults to today", jobs.Job{Name: jobs.OpenDay}, true},
		{"fuel", jobs.Job{Name: jobs.ReimburseFuel}, true},
		{"unknown", jobs.Job{Name: "rebuild-index"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.job.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestJob_Decode(t *testing.T) {
	var job jobs.Job
	require.NoError(t, json.Unmarshal([]byte(`{"job":"close-month","period":"2025-04"}`), &job))
	assert.Equal(t, jobs.CloseMonth, job.Name)
	assert.Equal(t, types.MustPeriod("2025-04"), job.Period)
	assert.NoError(t, job.Validate())
}

func TestDispatch_IsRetrySafe(t *testing.T) {
	f := apptest.New(t)
	member := f.Member(t, "Ana")
	f.Open(t, entity.AccountVehicle, "AB-123")

	fee := movementtype.NewType(movementtype.KindExpense, "Radio fee", true)
	fee.DefaultAmount = types.MustMoney("45")
	fee.AppliesTo = entity.AccountMember
	require.NoError(t, f.Types.Create(f.Ctx, fee))

	today := types.MustDate("01/05/2025")
	jobs.SetClock(f.Jobs, func() types.Date { return today })

	for _, job := range []jobs.Job{
		{Name: jobs.GenerateRecurring, Period: "2025-04"},
		{Name: jobs.CloseMonth, Period: "2025-04"},
		{Name: jobs.OpenDay},
		{Name: jobs.CloseDay},
		{Name: jobs.ReimburseFuel},
	} {
		require.NoError(t, f.Jobs.Dispatch(f.Ctx, job), job.Name)
		require.NoError(t, f.Jobs.Dispatch(f.Ctx, job), "retry of %s", job.Name)
	}

	movements, err := f.Movements.List(f.Ctx, accountmovement.ListFilter{Account: member.Ref()})
	require.NoError(t, err)
	assert.Len(t, movements.Items, 1)

	rows, err := f.History.List(f.Ctx, member.Ref())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	days, err := f.Cash.ListDays(f.Ctx, today, today)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.True(t, days[0].Closed())

	assert.NotEmpty(t, f.Logs.FilterMessage("cash day already opened").All())
	assert.NotEmpty(t, f.Logs.FilterMessage("cash day already closed").All())
}

func TestDispatch_RejectsInvalidJob(t *testing.T) {
	f := apptest.New(t)

	err := f.Jobs.Dispatch(f.Ctx, jobs.Job{Name: jobs.CloseMonth})
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestCloseDay_WithoutOpenDay(t *testing.T) {
	f := apptest.New(t)

	err := f.Jobs.CloseDay(f.Ctx, types.MustDate("02/05/2025"))
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}
