package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
)

type userRepository struct {
	store *Store
	tx    *txState
}

// lookup finds a user in pending then committed state, applying pending cash.
// Caller holds store.mu.
func (r *userRepository) lookup(id uint64) (userRecord, bool) {
	var rec userRecord
	found := false
	if r.tx != nil {
		for _, pending := range r.tx.users {
			if pending.id == id {
				rec, found = pending, true
				break
			}
		}
	}
	if !found {
		rec, found = r.store.users[id]
	}
	if !found {
		return userRecord{}, false
	}
	if r.tx != nil {
		if cash, ok := r.tx.cash[id]; ok {
			rec.cash = cash
		}
	}
	return rec, true
}

func (r *userRepository) GetByID(_ context.Context, id uint64) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.lookup(id)
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return rec.toEntity(), nil
}

// GetByIDForUpdate needs no extra locking: the unit of work already runs alone
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if r.tx != nil {
		for _, pending := range r.tx.users {
			if pending.username == username {
				rec, _ := r.lookup(pending.id)
				return rec.toEntity(), nil
			}
		}
	}
	id, ok := r.store.usernames[username]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	rec, _ := r.lookup(id)
	return rec.toEntity(), nil
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.usernames[user.Username]; taken {
		return errs.ErrDuplicateUser
	}
	if r.tx != nil {
		for _, pending := range r.tx.users {
			if pending.username == user.Username {
				return errs.ErrDuplicateUser
			}
		}
	}

	r.store.nextUserID++
	user.ID = r.store.nextUserID
	rec := userRecord{
		id:           user.ID,
		username:     user.Username,
		passwordHash: user.PasswordHash,
		cash:         user.Cash(),
		createdAt:    user.CreatedAt,
		updatedAt:    user.UpdatedAt,
	}

	if r.tx != nil {
		r.tx.users = append(r.tx.users, rec)
		return nil
	}
	r.store.users[rec.id] = rec
	r.store.usernames[rec.username] = rec.id
	return nil
}

func (r *userRepository) UpdateCash(_ context.Context, userID uint64, cash decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.lookup(userID); !ok {
		return errs.ErrUserNotFound
	}

	if r.tx != nil {
		r.tx.cash[userID] = cash
		return nil
	}
	rec := r.store.users[userID]
	rec.cash = cash
	rec.updatedAt = r.store.timeProvider.Now()
	r.store.users[userID] = rec
	return nil
}
