package usecase

import (
	"context"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// PortfolioUseCase reads and values a user's account
type PortfolioUseCase interface {
	// Compute values every holding at the current price.
	// A holding that cannot be priced is reported on its row, not as an error.
	Compute(ctx context.Context, userID uint64) (*entity.Portfolio, error)

	// History returns the user's ledger, oldest first
	History(ctx context.Context, userID uint64) ([]*entity.LedgerEntry, error)

	// Quote looks up a symbol for display; an unknown symbol yields a nil quote
	Quote(ctx context.Context, symbol string) (*entity.Quote, error)
}
