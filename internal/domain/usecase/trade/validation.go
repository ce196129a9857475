package trade

import (
	"strings"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
)

// Rejection reasons shown on the apology page
const (
	ReasonMissingSymbol      = "must provide stock's symbol"
	ReasonUnknownSymbol      = "stock doesn't exist"
	ReasonSelectStock        = "must select stock"
	ReasonNotOwned           = "no such stock is owned"
	ReasonNotEnoughShares    = "not enough shares of stock owned"
	ReasonNotEnoughCash      = entity.ReasonNotEnoughCash
	sellFormPlaceholderValue = "invalid"
)

// Flash messages for settled orders
const (
	MessageBought = "Bought!"
	MessageSold   = "Sold!"
)

// OrderValidator checks order input before any state is read
type OrderValidator struct{}

// NewOrderValidator creates a new OrderValidator
func NewOrderValidator() *OrderValidator {
	return &OrderValidator{}
}

// BuySymbol returns the normalized symbol of a buy order
func (v *OrderValidator) BuySymbol(raw string) (string, error) {
	symbol := entity.NormalizeSymbol(raw)
	if symbol == "" {
		return "", errs.NewValidationError(ReasonMissingSymbol)
	}
	return symbol, nil
}

// SellSymbol returns the normalized symbol picked in the sell form.
// The form's placeholder option counts as no selection.
func (v *OrderValidator) SellSymbol(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == sellFormPlaceholderValue {
		return "", errs.NewValidationError(ReasonSelectStock)
	}
	return entity.NormalizeSymbol(raw), nil
}

// Shares parses the requested quantity
func (v *OrderValidator) Shares(raw string) (int64, error) {
	return entity.ParseShares(raw)
}

// Holding checks that held shares cover a sale of requested shares
func (v *OrderValidator) Holding(symbol string, held, requested int64) error {
	if held <= 0 {
		return errs.NewNotFoundError(ReasonNotOwned).WithSymbol(symbol)
	}
	if held < requested {
		return errs.NewInsufficientResourceError(ReasonNotEnoughShares).WithSymbol(symbol)
	}
	return nil
}
