package dto

import "github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"

// Page carries what the shared layout needs
type Page struct {
	Title    string
	LoggedIn bool
	Flash    string
}

// ApologyPage renders a refused or failed request
type ApologyPage struct {
	Page
	Code    int
	Message string
}

// PortfolioPage renders the valued holdings
type PortfolioPage struct {
	Page
	Portfolio *entity.Portfolio
}

// SellPage offers the holdings that can be sold
type SellPage struct {
	Page
	Holdings []entity.Holding
}

// HistoryPage lists every ledger entry
type HistoryPage struct {
	Page
	Entries []*entity.LedgerEntry
}

// QuotedPage shows a looked up quote; Quote is nil when the symbol is unknown
type QuotedPage struct {
	Page
	Symbol string
	Quote  *entity.Quote
}
