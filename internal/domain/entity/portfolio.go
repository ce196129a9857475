package entity

import "github.com/shopspring/decimal"

// PortfolioRow values one holding at the current price.
// Err is set when no price could be obtained; Price and Value are zero then.
type PortfolioRow struct {
	Symbol string
	Name   string
	Shares int64
	Price  decimal.Decimal
	Value  decimal.Decimal
	Err    error
}

// Portfolio is a valuation snapshot of a user's cash and holdings
type Portfolio struct {
	UserID        uint64
	Rows          []PortfolioRow
	Cash          decimal.Decimal
	HoldingsValue decimal.Decimal
	Total         decimal.Decimal
	Incomplete    bool // At least one row could not be priced
}

// NewPortfolio totals the rows that were priced successfully
func NewPortfolio(userID uint64, cash decimal.Decimal, rows []PortfolioRow) *Portfolio {
	holdingsValue := decimal.Zero
	incomplete := false
	for _, row := range rows {
		if row.Err != nil {
			incomplete = true
			continue
		}
		holdingsValue = holdingsValue.Add(row.Value)
	}

	return &Portfolio{
		UserID:        userID,
		Rows:          rows,
		Cash:          cash,
		HoldingsValue: holdingsValue,
		Total:         cash.Add(holdingsValue),
		Incomplete:    incomplete,
	}
}
