package memory

import (
	"context"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
)

type ledgerRepository struct {
	store *Store
	tx    *txState
}

func (r *ledgerRepository) Append(_ context.Context, entry *entity.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := &userRepository{store: r.store, tx: r.tx}
	if _, ok := users.lookup(entry.UserID); !ok {
		return errs.ErrUserNotFound
	}

	r.store.nextEntryID++
	entry.ID = r.store.nextEntryID

	if r.tx != nil {
		r.tx.entries = append(r.tx.entries, *entry)
		return nil
	}
	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *ledgerRepository) ListByUser(_ context.Context, userID uint64) ([]*entity.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*entity.LedgerEntry, 0)
	collect := func(entries []entity.LedgerEntry) {
		for i := range entries {
			if entries[i].UserID == userID {
				e := entries[i]
				result = append(result, &e)
			}
		}
	}
	collect(r.store.entries)
	if r.tx != nil {
		collect(r.tx.entries)
	}
	return result, nil
}

func (r *ledgerRepository) Holdings(ctx context.Context, userID uint64) ([]entity.Holding, error) {
	entries, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entity.AggregateHoldings(entries), nil
}

func (r *ledgerRepository) HoldingOf(ctx context.Context, userID uint64, symbol string) (int64, error) {
	entries, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var net int64
	for _, e := range entries {
		if e.Symbol == symbol {
			net += e.Shares
		}
	}
	if net < 0 {
		return 0, nil
	}
	return net, nil
}
