package entity

import "github.com/shopspring/decimal"

// Quote is a price observation for one symbol, valid only for the request that fetched it
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// Cost returns the price of buying the given number of shares
func (q *Quote) Cost(shares int64) decimal.Decimal {
	return q.Price.Mul(decimal.NewFromInt(shares))
}
