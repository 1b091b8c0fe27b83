package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app"
	"taxiledger/internal/config"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/internal/domain/ledger"
)

func TestDefaultDatasetSeedsMemoryLedger(t *testing.T) {
	ctx := context.Background()
	rt, err := app.Open(ctx, config.Default(), "seed-test")
	require.NoError(t, err)

	ds, err := parseDataset([]byte(defaultDataset))
	require.NoError(t, err)

	sum, err := ds.Apply(ctx, rt)
	require.NoError(t, err)
	assert.Equal(t, Summary{Accounts: 5, Types: 4}, sum)

	members, err := rt.Ledger.List(ctx, ledger.ListFilter{Kind: entity.AccountMember})
	require.NoError(t, err)
	assert.Len(t, members.Items, 2)

	fee, err := rt.Types.FindByName(ctx, movementtype.KindExpense, "Monthly fee")
	require.NoError(t, err)
	assert.True(t, fee.MonthlyRecurrence)
	assert.Equal(t, entity.AccountMember, fee.AppliesTo)
	assert.True(t, fee.DefaultAmount.Equal(types.MustMoney("150")))

	// Types are skipped on a second run.
	again := &Dataset{Types: ds.Types}
	sum, err = again.Apply(ctx, rt)
	require.NoError(t, err)
	assert.Equal(t, Summary{SkippedTypes: 4}, sum)
}

func TestDatasetRejectsBadAmount(t *testing.T) {
	ctx := context.Background()
	rt, err := app.Open(ctx, config.Default(), "seed-test")
	require.NoError(t, err)

	ds, err := parseDataset([]byte(`
types:
  - kind: EXPENSE
    name: Fee
    default_amount: ten
`))
	require.NoError(t, err)

	_, err = ds.Apply(ctx, rt)
	assert.ErrorContains(t, err, `default amount of "Fee"`)
}

func TestParseDatasetInvalidYAML(t *testing.T) {
	_, err := parseDataset([]byte("members: [unclosed"))
	assert.Error(t, err)
}
