package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry represents one executed trade. Rows are never updated.
type LedgerEntry struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	UserID      uint64          `gorm:"not null;index:idx_ledger_user_symbol,priority:1"`
	Symbol      string          `gorm:"not null;size:16;index:idx_ledger_user_symbol,priority:2"`
	CompanyName string          `gorm:"not null;size:255"`
	Shares      int64           `gorm:"not null"` // Positive for buys, negative for sells
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	Total       decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt   time.Time       `gorm:"not null;index"`

	// Define relationships
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
