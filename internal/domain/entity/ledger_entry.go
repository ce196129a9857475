package entity

import (
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// Side of a ledger entry, derived from the sign of its share quantity
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// LedgerEntry is one executed trade. Entries are append-only.
type LedgerEntry struct {
	ID          uint64
	UserID      uint64
	Symbol      string
	CompanyName string          // Name reported by the price source at execution time
	Shares      int64           // Positive for a buy, negative for a sell
	Price       decimal.Decimal // Price per share at execution
	Total       decimal.Decimal // Shares * Price, signed like Shares
	CreatedAt   time.Time
}

// NewBuyEntry records a purchase of shares at the quoted price
func NewBuyEntry(userID uint64, quote *Quote, shares int64, timeProvider coreport.TimeProvider) (*LedgerEntry, error) {
	return newEntry(userID, quote, shares, timeProvider)
}

// NewSellEntry records a sale of shares at the quoted price
func NewSellEntry(userID uint64, quote *Quote, shares int64, timeProvider coreport.TimeProvider) (*LedgerEntry, error) {
	return newEntry(userID, quote, -shares, timeProvider)
}

func newEntry(userID uint64, quote *Quote, signedShares int64, timeProvider coreport.TimeProvider) (*LedgerEntry, error) {
	if userID == 0 {
		return nil, errs.ErrUserNotFound
	}
	if signedShares == 0 {
		return nil, errs.NewValidationError(ReasonPositiveShares)
	}

	return &LedgerEntry{
		UserID:      userID,
		Symbol:      quote.Symbol,
		CompanyName: quote.Name,
		Shares:      signedShares,
		Price:       quote.Price,
		Total:       quote.Price.Mul(decimal.NewFromInt(signedShares)),
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// Side reports whether the entry bought or sold shares
func (e *LedgerEntry) Side() Side {
	if e.Shares < 0 {
		return SideSell
	}
	return SideBuy
}
