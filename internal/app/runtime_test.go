package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/app"
	"taxiledger/internal/config"
	"taxiledger/internal/core/entity"
)

func TestOpenMemoryRuntime(t *testing.T) {
	ctx := context.Background()
	rt, err := app.Open(ctx, config.Default(), "ledger-test")
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Pool)
	assert.Nil(t, rt.Idempotency)

	reg, err := rt.Cash.Get(ctx)
	require.NoError(t, err)
	assert.True(t, reg.Amount.IsZero())

	ownerID, err := rt.Owners.Register(ctx, entity.AccountVehicle, "ABC-123")
	require.NoError(t, err)
	account, err := rt.Ledger.OpenAccount(ctx, entity.AccountVehicle, ownerID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, account.OwnerID)
	assert.Equal(t, entity.AccountVehicle, account.Ref().Kind)
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	_, err := app.Open(context.Background(), cfg, "ledger-test")
	assert.Error(t, err)
}
