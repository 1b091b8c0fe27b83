// Package tx provides transaction management abstractions.
// Ledger services depend on these interfaces, never on a concrete store.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Every ledger mutation (balance adjustment, posting, allocation) runs inside
// RunInTransaction so that it either fully applies or fully rolls back.
//
// Implementations live in infrastructure/storage (postgres, memory).
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
