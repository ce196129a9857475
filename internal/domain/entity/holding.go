package entity

import "sort"

// Holding is a user's net position in one symbol
type Holding struct {
	Symbol string
	Name   string
	Shares int64
}

// AggregateHoldings sums signed share quantities per symbol and drops positions that are not positive.
// The result is sorted by symbol.
func AggregateHoldings(entries []*LedgerEntry) []Holding {
	bySymbol := make(map[string]*Holding)
	for _, entry := range entries {
		h, ok := bySymbol[entry.Symbol]
		if !ok {
			h = &Holding{Symbol: entry.Symbol}
			bySymbol[entry.Symbol] = h
		}
		h.Shares += entry.Shares
		if entry.CompanyName != "" {
			h.Name = entry.CompanyName
		}
	}

	holdings := make([]Holding, 0, len(bySymbol))
	for _, h := range bySymbol {
		if h.Shares > 0 {
			holdings = append(holdings, *h)
		}
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings
}
