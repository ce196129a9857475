package market

import (
	"context"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// PriceOracle resolves a ticker symbol to its company name and current price.
// Results must not be cached: every call reflects the source at that moment.
type PriceOracle interface {
	// Lookup returns the current quote for symbol
	//
	// Possible errors:
	// - ErrQuoteNotFound: If the source does not know the symbol
	// - ErrUpstreamUnavailable: If the source cannot be reached or answers garbage
	Lookup(ctx context.Context, symbol string) (*entity.Quote, error)
}
