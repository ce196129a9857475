package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/repository"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const txKey contextKey = "tx"

// ErrNoTransaction is returned by Commit and Rollback when the context carries no transaction
var ErrNoTransaction = errors.New("no transaction found in context")

// UnitOfWork implements the unit of work pattern for database transactions.
// Row locks taken through GetUserRepository(ctx).GetByIDForUpdate are held until Commit or Rollback.
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) persistence.UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return ctx, errors.New("transaction already in progress")
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return ErrNoTransaction
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the current transaction.
// Rolling back a transaction that already finished is not an error.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return ErrNoTransaction
	}

	err := tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) || errors.Is(err, gorm.ErrInvalidTransaction) {
		u.logger.Debug("Transaction already finished", map[string]any{"error": err.Error()})
		return nil
	}
	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// GetUserRepository returns a user repository in the current transaction
func (u *UnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return repository.NewUserRepository(u.getDbFromContext(ctx), u.timeProvider, u.loggerFor(ctx))
}

// GetLedgerRepository returns a ledger repository in the current transaction
func (u *UnitOfWork) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return repository.NewLedgerRepository(u.getDbFromContext(ctx), u.loggerFor(ctx))
}

// GetSessionRepository returns a session repository in the current transaction
func (u *UnitOfWork) GetSessionRepository(ctx context.Context) persistence.SessionRepository {
	return repository.NewSessionRepository(u.getDbFromContext(ctx), u.timeProvider, u.loggerFor(ctx))
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok && tx != nil {
		return tx
	}
	return u.db.WithContext(ctx)
}

func (u *UnitOfWork) loggerFor(ctx context.Context) coreport.Logger {
	return coreport.LoggerFromContext(ctx, u.logger)
}
