package persistence

import (
	"context"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// LedgerRepository defines the append-only store of executed trades
type LedgerRepository interface {
	// Append stores a new ledger entry and sets its ID
	//
	// Possible errors:
	// - ErrUserNotFound: If referenced user does not exist
	// - ErrDatabaseConnection: If database connection fails
	Append(ctx context.Context, entry *entity.LedgerEntry) error

	// ListByUser returns every entry of the user, oldest first
	ListByUser(ctx context.Context, userID uint64) ([]*entity.LedgerEntry, error)

	// Holdings returns the user's positive net positions, sorted by symbol
	Holdings(ctx context.Context, userID uint64) ([]entity.Holding, error)

	// HoldingOf returns the user's net shares of one symbol, zero when none are held
	HoldingOf(ctx context.Context, userID uint64, symbol string) (int64, error)
}
