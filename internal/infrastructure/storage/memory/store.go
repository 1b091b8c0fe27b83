// Package memory provides an in-process implementation of every ledger repository.
// It backs DATA_BACKEND=memory and the service tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/tx"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/accountmovement"
	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/internal/domain/fuel"
	"taxiledger/internal/domain/history"
	"taxiledger/internal/domain/ledger"
	"taxiledger/internal/domain/moneymovement"
	"taxiledger/internal/domain/payroll"
	"taxiledger/internal/domain/receipt"
	"taxiledger/internal/domain/registers/cash"
	"taxiledger/internal/domain/settlement"
)

var _ tx.ReadOnlyManager = (*Store)(nil)

// Store holds all tables. A transaction holds the store-wide lock until it
// ends and restores every table when it fails.
type Store struct {
	mu     sync.Mutex
	tables []snapshotter

	accounts    *table[ledger.Account]
	types       *table[movementtype.Type]
	movements   *table[accountmovement.AccountMovement]
	money       *table[moneymovement.MoneyMovement]
	registers   *table[cash.Register]
	cashDays    *table[cash.DayHistory]
	allocations *table[settlement.Allocation]
	receipts    *table[receipt.Receipt]
	settlements *table[payroll.Settlement]
	advances    *table[payroll.Advance]
	histories   *table[history.AccountHistory]
	fuel        *table[fuel.Reimbursement]
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		accounts:    newTable("account", func(e *ledger.Account) *entity.BaseEntity { return &e.BaseEntity }),
		types:       newTable("movement type", func(e *movementtype.Type) *entity.BaseEntity { return &e.BaseEntity }),
		movements:   newTable("account movement", func(e *accountmovement.AccountMovement) *entity.BaseEntity { return &e.BaseEntity }),
		money:       newTable("money movement", func(e *moneymovement.MoneyMovement) *entity.BaseEntity { return &e.BaseEntity }),
		registers:   newTable("cash register", func(e *cash.Register) *entity.BaseEntity { return &e.BaseEntity }),
		cashDays:    newTable("cash day", func(e *cash.DayHistory) *entity.BaseEntity { return &e.BaseEntity }),
		allocations: newTable("allocation", func(e *settlement.Allocation) *entity.BaseEntity { return &e.BaseEntity }),
		receipts:    newTable("receipt", func(e *receipt.Receipt) *entity.BaseEntity { return &e.BaseEntity }),
		settlements: newTable("payroll settlement", func(e *payroll.Settlement) *entity.BaseEntity { return &e.BaseEntity }),
		advances:    newTable("advance", func(e *payroll.Advance) *entity.BaseEntity { return &e.BaseEntity }),
		histories:   newTable("account history", func(e *history.AccountHistory) *entity.BaseEntity { return &e.BaseEntity }),
		fuel:        newTable("fuel reimbursement", func(e *fuel.Reimbursement) *entity.BaseEntity { return &e.BaseEntity }),
	}
	s.tables = []snapshotter{
		s.accounts, s.types, s.movements, s.money, s.registers, s.cashDays,
		s.allocations, s.receipts, s.settlements, s.advances, s.histories, s.fuel,
	}
	return s
}

// txKey marks a context running inside a store transaction.
type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// RunInTransaction executes fn holding the store lock.
// Nested calls reuse the running transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restores := make([]func(), len(s.tables))
	for i, t := range s.tables {
		restores[i] = t.snapshot()
	}
	rollback := func() {
		for _, restore := range restores {
			restore()
		}
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		rollback()
	}
	return err
}

// ReadOnly executes fn in a transaction; writes are not prevented.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.RunInTransaction(ctx, fn)
}

// do runs a single repository operation, locking the store unless a transaction holds it.
func (s *Store) do(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

type snapshotter interface {
	snapshot() (restore func())
}

// table stores rows by id in insertion order. Stored rows are never mutated
// in place: writes store copies and reads return copies.
type table[E any] struct {
	name  string
	base  func(*E) *entity.BaseEntity
	rows  map[id.ID]*E
	order []id.ID
}

func newTable[E any](name string, base func(*E) *entity.BaseEntity) *table[E] {
	return &table[E]{
		name: name,
		base: base,
		rows: make(map[id.ID]*E),
	}
}

func (t *table[E]) clone(e *E) *E {
	c := *e
	return &c
}

func (t *table[E]) snapshot() func() {
	rows := make(map[id.ID]*E, len(t.rows))
	for k, v := range t.rows {
		rows[k] = v
	}
	order := slices.Clone(t.order)
	return func() {
		t.rows = rows
		t.order = order
	}
}

func (t *table[E]) insert(e *E) error {
	key := t.base(e).ID
	if _, ok := t.rows[key]; ok {
		return apperror.NewDuplicate(t.name, "id", key.String())
	}
	t.rows[key] = t.clone(e)
	t.order = append(t.order, key)
	return nil
}

func (t *table[E]) get(key id.ID) (*E, error) {
	e, ok := t.rows[key]
	if !ok {
		return nil, apperror.NewNotFound(t.name, key.String())
	}
	return t.clone(e), nil
}

// update replaces a row when its version matches and bumps the caller's version.
func (t *table[E]) update(e *E) error {
	b := t.base(e)
	current, ok := t.rows[b.ID]
	if !ok {
		return apperror.NewNotFound(t.name, b.ID.String())
	}
	if t.base(current).Version != b.Version {
		return apperror.NewConcurrentModification(t.name, b.ID.String())
	}
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	t.rows[b.ID] = t.clone(e)
	return nil
}

// find returns a copy of the first row matching fn.
func (t *table[E]) find(fn func(*E) bool) (*E, bool) {
	for _, key := range t.order {
		if e := t.rows[key]; fn(e) {
			return t.clone(e), true
		}
	}
	return nil, false
}

// filter returns copies of the rows matching fn in insertion order.
func (t *table[E]) filter(fn func(*E) bool) []*E {
	out := make([]*E, 0)
	for _, key := range t.order {
		if e := t.rows[key]; fn(e) {
			out = append(out, t.clone(e))
		}
	}
	return out
}

func wanted(ids []id.ID, key id.ID) bool {
	return len(ids) == 0 || slices.Contains(ids, key)
}

// sortByDate orders items by date, oldest first, keeping insertion order for ties.
func sortByDate[E any](items []*E, date func(*E) types.Date) {
	sort.SliceStable(items, func(i, j int) bool { return date(items[i]).Before(date(items[j])) })
}
