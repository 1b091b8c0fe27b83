package app

import (
	"context"

	"taxiledger/internal/domain/masterdata"
	"taxiledger/internal/infrastructure/numerator"
	"taxiledger/internal/infrastructure/storage/postgres"
	"taxiledger/internal/infrastructure/storage/postgres/ledger_repo"
)

// NewPostgres wires the services over PostgreSQL. Voucher numbers are taken
// inside the caller's transaction so a rolled back movement releases its number.
func NewPostgres(txm *postgres.TxManager, dir masterdata.Directory, concurrency int) *Container {
	return New(Options{
		Repos: Repositories{
			Accounts:       ledger_repo.NewAccountRepo(txm),
			Types:          ledger_repo.NewMovementTypeRepo(txm),
			Movements:      ledger_repo.NewAccountMovementRepo(txm),
			MoneyMovements: ledger_repo.NewMoneyMovementRepo(txm),
			Cash:           ledger_repo.NewCashRepo(txm),
			Allocations:    ledger_repo.NewAllocationRepo(txm),
			Receipts:       ledger_repo.NewReceiptRepo(txm),
			Payroll:        ledger_repo.NewPayrollRepo(txm),
			Histories:      ledger_repo.NewHistoryRepo(txm),
			Fuel:           ledger_repo.NewFuelRepo(txm),
		},
		TxManager: txm,
		Numerator: numerator.New(func(ctx context.Context) numerator.Querier {
			return txm.GetQuerier(ctx)
		}),
		Directory:   dir,
		Concurrency: concurrency,
	})
}
