package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/time"
)

// newTestManager connects to the database named by STOCKSIM_TEST_DB_* and migrates it.
// Tests using it are skipped when no test database is configured.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	host := os.Getenv("STOCKSIM_TEST_DB_HOST")
	if host == "" {
		t.Skip("STOCKSIM_TEST_DB_HOST not set; skipping postgres integration test")
	}

	cfg := &Config{
		Driver:        DriverPostgres,
		Host:          host,
		Port:          envOrDefault("STOCKSIM_TEST_DB_PORT", "5432"),
		Username:      envOrDefault("STOCKSIM_TEST_DB_USERNAME", "postgres"),
		Password:      envOrDefault("STOCKSIM_TEST_DB_PASSWORD", "postgres"),
		Database:      envOrDefault("STOCKSIM_TEST_DB_NAME", "stocksim_test"),
		SSLMode:       "disable",
		MaxOpenConns:  10,
		MaxIdleConns:  5,
		QueryTimeout:  5 * time.Second,
		LogLevel:      "silent",
		RetryAttempts: 1,
	}
	require.NoError(t, cfg.Validate())

	manager := NewManager(cfg, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())
	ctx := context.Background()
	_, err := manager.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	require.NoError(t, manager.Migrate(ctx))
	require.NoError(t, manager.DB().Exec("TRUNCATE TABLE sessions, ledger_entries, users RESTART IDENTITY CASCADE").Error)
	return manager
}

func envOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func TestPostgresLedgerAndCash(t *testing.T) {
	manager := newTestManager(t)
	uow := manager.CreateUnitOfWork()
	tp := timeprovider.NewRealTimeProvider()
	ctx := context.Background()

	user, err := entity.NewUser("alice", "hash", decimal.RequireFromString("10000.00"), tp)
	require.NoError(t, err)
	require.NoError(t, uow.GetUserRepository(ctx).Create(ctx, user))
	require.NotZero(t, user.ID)

	duplicate, err := entity.NewUser("alice", "other", decimal.RequireFromString("10000.00"), tp)
	require.NoError(t, err)
	assert.ErrorIs(t, uow.GetUserRepository(ctx).Create(ctx, duplicate), errs.ErrDuplicateUser)

	quote := &entity.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("100.00")}

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	locked, err := uow.GetUserRepository(txCtx).GetByIDForUpdate(txCtx, user.ID)
	require.NoError(t, err)
	entry, err := entity.NewBuyEntry(user.ID, quote, 10, tp)
	require.NoError(t, err)
	require.NoError(t, locked.Debit(entry.Total, tp))
	require.NoError(t, uow.GetLedgerRepository(txCtx).Append(txCtx, entry))
	require.NoError(t, uow.GetUserRepository(txCtx).UpdateCash(txCtx, user.ID, locked.Cash()))
	require.NoError(t, uow.Commit(txCtx))
	require.NoError(t, uow.Rollback(txCtx))

	stored, err := uow.GetUserRepository(ctx).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "9000.00", stored.Cash().StringFixed(2))

	holdings, err := uow.GetLedgerRepository(ctx).Holdings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, entity.Holding{Symbol: "AAPL", Name: "Apple Inc.", Shares: 10}, holdings[0])

	sell, err := entity.NewSellEntry(user.ID, quote, 10, tp)
	require.NoError(t, err)
	require.NoError(t, uow.GetLedgerRepository(ctx).Append(ctx, sell))

	held, err := uow.GetLedgerRepository(ctx).HoldingOf(ctx, user.ID, "AAPL")
	require.NoError(t, err)
	assert.Zero(t, held)

	holdings, err = uow.GetLedgerRepository(ctx).Holdings(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	entries, err := uow.GetLedgerRepository(ctx).ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(10), entries[0].Shares)
	assert.Equal(t, int64(-10), entries[1].Shares)
}

func TestPostgresRollbackDiscardsWrites(t *testing.T) {
	manager := newTestManager(t)
	uow := manager.CreateUnitOfWork()
	tp := timeprovider.NewRealTimeProvider()
	ctx := context.Background()

	user, err := entity.NewUser("bob", "hash", decimal.RequireFromString("50.00"), tp)
	require.NoError(t, err)
	require.NoError(t, uow.GetUserRepository(ctx).Create(ctx, user))

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.GetUserRepository(txCtx).UpdateCash(txCtx, user.ID, decimal.Zero))
	require.NoError(t, uow.Rollback(txCtx))

	stored, err := uow.GetUserRepository(ctx).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", stored.Cash().StringFixed(2))
}

func TestPostgresSessions(t *testing.T) {
	manager := newTestManager(t)
	uow := manager.CreateUnitOfWork()
	clock := timeprovider.NewManualClock(time.Now().UTC().Truncate(time.Second))
	ctx := context.Background()

	user, err := entity.NewUser("carol", "hash", decimal.RequireFromString("1.00"), clock)
	require.NoError(t, err)
	require.NoError(t, uow.GetUserRepository(ctx).Create(ctx, user))

	sessions := uow.GetSessionRepository(ctx)
	session, err := entity.NewSession("token-1", user.ID, coreport.Hour, clock)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, session))

	require.NoError(t, sessions.SetFlash(ctx, "token-1", "Bought!"))
	message, err := sessions.PopFlash(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "Bought!", message)
	message, err = sessions.PopFlash(ctx, "token-1")
	require.NoError(t, err)
	assert.Empty(t, message)

	_, err = sessions.Get(ctx, "token-1", clock.Now().Add(2*time.Hour))
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)

	removed, err := sessions.DeleteExpired(ctx, clock.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
