// Package app wires repositories and domain services into one container
// shared by the binaries and the service tests.
package app

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/numerator"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/internal/domain/fuel"
	"taxiledger/internal/domain/history"
	"taxiledger/internal/domain/jobs"
	"taxiledger/internal/domain/ledger"
	"taxiledger/internal/domain/masterdata"
	"taxiledger/internal/domain/moneymovement"
	"taxiledger/internal/domain/payroll"
	"taxiledger/internal/domain/receipt"
	"taxiledger/internal/domain/registers/cash"
	"taxiledger/internal/domain/settlement"
	"taxiledger/internal/infrastructure/storage/memory"
	pkgnumerator "taxiledger/pkg/numerator"
)

// Repositories groups the storage backend of every domain.
type Repositories struct {
	Accounts       ledger.Repository
	Types          movementtype.Repository
	Movements      accountmovement.Repository
	MoneyMovements moneymovement.Repository
	Cash           cash.Repository
	Allocations    settlement.Repository
	Receipts       receipt.Repository
	Payroll        payroll.Repository
	Histories      history.Repository
	Fuel           fuel.Repository
}

// Options configures the container.
type Options struct {
	Repos       Repositories
	TxManager   tx.Manager
	Numerator   numerator.Generator
	Directory   masterdata.Directory
	Concurrency int
}

// Container holds the wired domain services.
type Container struct {
	TxManager tx.Manager

	Ledger         *ledger.Service
	Types          *movementtype.Service
	Movements      *accountmovement.Service
	Cash           *cash.Service
	MoneyMovements *moneymovement.Service
	Settlements    *settlement.Service
	Receipts       *receipt.Service
	Payroll        *payroll.Service
	History        *history.Service
	Fuel           *fuel.Service
	Jobs           *jobs.Runner
}

// New wires the services. Collaborators that would form import cycles meet
// through the small interfaces each domain package declares.
func New(opts Options) *Container {
	r := opts.Repos
	txm := opts.TxManager

	ledgerSvc := ledger.NewService(r.Accounts, opts.Directory, txm)
	typeSvc := movementtype.NewService(r.Types, txm)

	settlementSvc := settlement.NewService(r.Allocations, r.Movements, settlement.Payers{
		entity.PayerReceipt:           receipt.NewPayerLookup(r.Receipts),
		entity.PayerPayrollSettlement: payroll.NewPayerLookup(r.Payroll),
		entity.PayerMoneyMovement:     moneymovement.NewPayerLookup(r.MoneyMovements),
	}, txm)

	movementSvc := accountmovement.NewService(r.Movements, ledgerSvc, typeSvc, r.Allocations, txm)
	cashSvc := cash.NewService(r.Cash, txm)
	payrollSvc := payroll.NewService(r.Payroll, ledgerSvc, txm)

	moneySvc := moneymovement.NewService(moneymovement.Config{
		Repo:        r.MoneyMovements,
		Ledger:      ledgerSvc,
		Cash:        cashSvc,
		Advances:    payrollSvc,
		Allocations: settlementSvc,
		Numerator:   opts.Numerator,
		TxManager:   txm,
	})

	receiptSvc := receipt.NewService(r.Receipts, ledgerSvc, settlementSvc, txm)
	historySvc := history.NewService(r.Histories, ledgerSvc, txm, opts.Concurrency)
	fuelSvc := fuel.NewService(r.Fuel, ledgerSvc, txm)

	return &Container{
		TxManager:      txm,
		Ledger:         ledgerSvc,
		Types:          typeSvc,
		Movements:      movementSvc,
		Cash:           cashSvc,
		MoneyMovements: moneySvc,
		Settlements:    settlementSvc,
		Receipts:       receiptSvc,
		Payroll:        payrollSvc,
		History:        historySvc,
		Fuel:           fuelSvc,
		Jobs:           jobs.NewRunner(movementSvc, historySvc, cashSvc, fuelSvc),
	}
}

// NewMemory wires the services over a fresh in-memory store.
func NewMemory(dir masterdata.Directory) *Container {
	return New(MemoryOptions(dir))
}

// MemoryOptions returns the options of a fresh in-memory store for callers
// that replace a collaborator before wiring.
func MemoryOptions(dir masterdata.Directory) Options {
	store := memory.NewStore()
	return Options{
		Repos: Repositories{
			Accounts:       store.Accounts(),
			Types:          store.Types(),
			Movements:      store.Movements(),
			MoneyMovements: store.MoneyMovements(),
			Cash:           store.Cash(),
			Allocations:    store.Allocations(),
			Receipts:       store.Receipts(),
			Payroll:        store.Payroll(),
			Histories:      store.Histories(),
			Fuel:           store.Fuel(),
		},
		TxManager: store,
		Numerator: pkgnumerator.NewMemory(),
		Directory: dir,
	}
}
