package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
)

// ErrNoTransaction is returned when Commit or Rollback is called without Begin
var ErrNoTransaction = errors.New("no transaction found in context")

type txKey struct{}

// userRecord is the stored form of a user; entities are rebuilt on every read
type userRecord struct {
	id           uint64
	username     string
	passwordHash string
	cash         decimal.Decimal
	createdAt    time.Time
	updatedAt    time.Time
}

func (r userRecord) toEntity() *entity.User {
	return entity.RestoreUser(r.id, r.username, r.passwordHash, r.cash, r.createdAt, r.updatedAt)
}

// txState buffers the writes of one unit of work until commit
type txState struct {
	cash    map[uint64]decimal.Decimal
	users   []userRecord
	entries []entity.LedgerEntry
	done    bool
}

// Store is an in-memory implementation of the identity and ledger stores.
// Units of work run one at a time, which gives every transaction the same
// row-lock guarantee SELECT ... FOR UPDATE gives on postgres.
type Store struct {
	sem chan struct{} // held by the running unit of work

	mu          sync.RWMutex // guards everything below
	users       map[uint64]userRecord
	usernames   map[string]uint64
	entries     []entity.LedgerEntry
	sessions    map[string]entity.Session
	nextUserID  uint64
	nextEntryID uint64

	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewStore creates an empty store
func NewStore(logger coreport.Logger, timeProvider coreport.TimeProvider) *Store {
	return &Store{
		sem:          make(chan struct{}, 1),
		users:        make(map[uint64]userRecord),
		usernames:    make(map[string]uint64),
		entries:      make([]entity.LedgerEntry, 0),
		sessions:     make(map[string]entity.Session),
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Begin waits for the running unit of work to finish and starts a new one
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if txFrom(ctx) != nil {
		return ctx, fmt.Errorf("failed to begin transaction: nested transactions are not supported")
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx, fmt.Errorf("failed to begin transaction: %w", ctx.Err())
	}

	s.logger.Debug("Beginning in-memory transaction", nil)
	tx := &txState{cash: make(map[uint64]decimal.Decimal)}
	return context.WithValue(ctx, txKey{}, tx), nil
}

// Commit applies the buffered writes atomically
func (s *Store) Commit(ctx context.Context) error {
	tx := txFrom(ctx)
	if tx == nil {
		return ErrNoTransaction
	}
	if tx.done {
		return fmt.Errorf("failed to commit transaction: already been committed or rolled back")
	}
	defer s.finish(tx)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range tx.users {
		if _, taken := s.usernames[rec.username]; taken {
			return fmt.Errorf("failed to commit transaction: %w", errs.ErrDuplicateUser)
		}
	}
	for _, rec := range tx.users {
		if cash, ok := tx.cash[rec.id]; ok {
			rec.cash = cash
			rec.updatedAt = s.timeProvider.Now()
			delete(tx.cash, rec.id)
		}
		s.users[rec.id] = rec
		s.usernames[rec.username] = rec.id
	}
	for id, cash := range tx.cash {
		rec := s.users[id]
		rec.cash = cash
		rec.updatedAt = s.timeProvider.Now()
		s.users[id] = rec
	}
	s.entries = append(s.entries, tx.entries...)

	s.logger.Debug("Committed in-memory transaction", map[string]any{
		"users_created":   len(tx.users),
		"cash_updates":    len(tx.cash),
		"entries_written": len(tx.entries),
	})
	return nil
}

// Rollback discards the buffered writes. Rolling back a finished unit of work is a no-op.
func (s *Store) Rollback(ctx context.Context) error {
	tx := txFrom(ctx)
	if tx == nil {
		return ErrNoTransaction
	}
	if tx.done {
		return nil
	}
	s.logger.Debug("Rolling back in-memory transaction", nil)
	s.finish(tx)
	return nil
}

func (s *Store) finish(tx *txState) {
	tx.done = true
	<-s.sem
}

// GetUserRepository returns a user repository bound to the current transaction
func (s *Store) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return &userRepository{store: s, tx: liveTx(ctx)}
}

// GetLedgerRepository returns a ledger repository bound to the current transaction
func (s *Store) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return &ledgerRepository{store: s, tx: liveTx(ctx)}
}

// GetSessionRepository returns the session repository. Sessions are not transactional here.
func (s *Store) GetSessionRepository(context.Context) persistence.SessionRepository {
	return &sessionRepository{store: s}
}

func txFrom(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey{}).(*txState)
	return tx
}

// liveTx returns the transaction in ctx unless it has already finished
func liveTx(ctx context.Context) *txState {
	tx := txFrom(ctx)
	if tx == nil || tx.done {
		return nil
	}
	return tx
}

// Compile-time check: ensure Store implements UnitOfWork
var _ persistence.UnitOfWork = (*Store)(nil)
