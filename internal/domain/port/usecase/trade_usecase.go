package usecase

import (
	"context"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// BuyOrder is a market buy as submitted by the buy form
type BuyOrder struct {
	UserID uint64
	Symbol string
	Shares string // Raw form value; parsed and validated by the use case
}

// SellOrder is a market sell as submitted by the sell form
type SellOrder struct {
	UserID uint64
	Symbol string
	Shares string
}

// TradeResult describes a committed order
type TradeResult struct {
	Entry   *entity.LedgerEntry
	Cash    string // Cash after settlement, plain decimal
	Message string // Flash message for the next page
}

// TradeUseCase settles market orders against the user's cash and holdings
type TradeUseCase interface {
	// Buy validates and settles a purchase.
	// Rejections are *errs.RejectionError values carrying the user-facing reason.
	Buy(ctx context.Context, order BuyOrder) (*TradeResult, error)

	// Sell validates and settles a sale
	Sell(ctx context.Context, order SellOrder) (*TradeResult, error)

	// SellableHoldings lists the positions the sell form can offer
	SellableHoldings(ctx context.Context, userID uint64) ([]entity.Holding, error)
}
