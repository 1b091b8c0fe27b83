// Package apptest builds a fully wired in-memory ledger for service tests.
package apptest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"taxiledger/internal/app"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/domain/ledger"
	"taxiledger/internal/domain/masterdata"
	"taxiledger/pkg/logger"
)

// Fixture is an in-memory ledger with a bootstrapped cash register.
type Fixture struct {
	*app.Container

	Ctx       context.Context
	Directory *masterdata.Static
	Logs      *observer.ObservedLogs
}

// New creates a fixture. Logs at debug level and above are captured in Logs.
// Options may replace collaborators of the in-memory wiring.
func New(t testing.TB, opts ...func(*app.Options)) *Fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), logger.NewFromCore(core))

	dir := masterdata.NewStatic()
	options := app.MemoryOptions(dir)
	for _, opt := range opts {
		opt(&options)
	}
	f := &Fixture{
		Container: app.New(options),
		Ctx:       ctx,
		Directory: dir,
		Logs:      logs,
	}

	_, err := f.Cash.Bootstrap(ctx)
	require.NoError(t, err)
	return f
}

// Open registers an owner of kind and opens its account.
func (f *Fixture) Open(t testing.TB, kind entity.AccountKind, name string) *ledger.Account {
	t.Helper()
	ownerID := f.Directory.Register(kind, name)
	account, err := f.Ledger.OpenAccount(f.Ctx, kind, ownerID)
	require.NoError(t, err)
	return account
}

// Member opens a member account.
func (f *Fixture) Member(t testing.TB, name string) *ledger.Account {
	t.Helper()
	return f.Open(t, entity.AccountMember, name)
}

// Balance returns the balance of account.
func (f *Fixture) Balance(t testing.TB, ref entity.AccountRef) types.Money {
	t.Helper()
	balance, err := f.Ledger.GetBalance(f.Ctx, ref)
	require.NoError(t, err)
	return balance
}

// Expense creates an unposted monthly expense on account.
func (f *Fixture) Expense(t testing.TB, ref entity.AccountRef, amount string, period string) *accountmovement.AccountMovement {
	t.Helper()
	m, err := f.Movements.Create(f.Ctx, accountmovement.CreateInput{
		Account: ref,
		Kind:    accountmovement.KindMonthlyExpense,
		Amount:  types.MustMoney(amount),
		Period:  types.MustPeriod(period),
	})
	require.NoError(t, err)
	return m
}

// Repair creates an unposted workshop repair on a vehicle account.
func (f *Fixture) Repair(t testing.TB, ref entity.AccountRef, amount string, period string) *accountmovement.AccountMovement {
	t.Helper()
	m, err := f.Movements.Create(f.Ctx, accountmovement.CreateInput{
		Account:    ref,
		Kind:       accountmovement.KindWorkshopRepair,
		Amount:     types.MustMoney(amount),
		Period:     types.MustPeriod(period),
		RepairType: "engine",
	})
	require.NoError(t, err)
	return m
}

// AssertMoney compares amounts numerically.
func AssertMoney(t testing.TB, want string, got types.Money, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, types.MustMoney(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
