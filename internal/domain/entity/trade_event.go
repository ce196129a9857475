package entity

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TradeCommitted is emitted after a ledger entry and the matching cash change are stored
type TradeCommitted struct {
	EntryID    uint64    `json:"entryId"`
	UserID     uint64    `json:"userId"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Shares     int64     `json:"shares"`
	Price      string    `json:"price"`
	Total      string    `json:"total"`
	CashAfter  string    `json:"cashAfter"`
	ExecutedAt time.Time `json:"executedAt"`
}

// NewTradeCommitted describes a settled entry and the cash left afterwards
func NewTradeCommitted(entry *LedgerEntry, cashAfter decimal.Decimal) TradeCommitted {
	return TradeCommitted{
		EntryID:    entry.ID,
		UserID:     entry.UserID,
		Symbol:     entry.Symbol,
		Side:       entry.Side(),
		Shares:     entry.Shares,
		Price:      entry.Price.String(),
		Total:      entry.Total.String(),
		CashAfter:  cashAfter.String(),
		ExecutedAt: entry.CreatedAt,
	}
}

// Key partitions events by user so one user's trades stay ordered
func (e TradeCommitted) Key() string {
	return strconv.FormatUint(e.UserID, 10)
}
