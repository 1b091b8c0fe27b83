package memory

import (
	"context"
	"sort"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/history"
)

// HistoryRepo implements history.Repository.
type HistoryRepo struct{ s *Store }

var _ history.Repository = (*HistoryRepo)(nil)

// Histories returns the account history repository.
func (s *Store) Histories() *HistoryRepo { return &HistoryRepo{s: s} }

func (r *HistoryRepo) Create(ctx context.Context, h *history.AccountHistory) error {
	return r.s.do(ctx, func() error {
		if _, dup := r.s.histories.find(func(e *history.AccountHistory) bool {
			return e.Active && e.Account == h.Account && e.Period == h.Period
		}); dup {
			return apperror.NewPeriodClosed(string(h.Period)).WithDetail("account", h.Account.String())
		}
		return r.s.histories.insert(h)
	})
}

func (r *HistoryRepo) GetByID(ctx context.Context, historyID id.ID) (h *history.AccountHistory, err error) {
	err = r.s.do(ctx, func() error {
		h, err = r.s.histories.get(historyID)
		return err
	})
	return h, err
}

func (r *HistoryRepo) Update(ctx context.Context, h *history.AccountHistory) error {
	return r.s.do(ctx, func() error { return r.s.histories.update(h) })
}

func (r *HistoryRepo) Find(ctx context.Context, account entity.AccountRef, period types.Period) (h *history.AccountHistory, err error) {
	err = r.s.do(ctx, func() error {
		var ok bool
		h, ok = r.s.histories.find(func(e *history.AccountHistory) bool {
			return e.Active && e.Account == account && e.Period == period
		})
		if !ok {
			return apperror.NewNotFound("account history", string(period))
		}
		return nil
	})
	return h, err
}

func (r *HistoryRepo) ListByAccount(ctx context.Context, account entity.AccountRef) (items []*history.AccountHistory, err error) {
	err = r.s.do(ctx, func() error {
		items = r.s.histories.filter(func(e *history.AccountHistory) bool {
			return e.Active && e.Account == account
		})
		sort.SliceStable(items, func(i, j int) bool { return items[i].Period < items[j].Period })
		return nil
	})
	return items, err
}
