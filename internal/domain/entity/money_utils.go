package entity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
)

// Rejection reasons for share quantities
const (
	ReasonMissingShares  = "must provide a number of shares"
	ReasonWholeShares    = "must provide a whole number of shares"
	ReasonPositiveShares = "must provide a positive value"
)

// maxSharesInput bounds the length of a share quantity before it is parsed
const maxSharesInput = 32

// sharesPattern accepts a plain integer with an optional all-zero fraction
var sharesPattern = regexp.MustCompile(`^([+-]?\d+)(\.0+)?$`)

// ParseShares validates a user-entered share quantity.
// Values like "10" and "10.0" are accepted; "10.5", "1e3", "abc" and anything below one are rejected.
func ParseShares(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errs.NewValidationError(ReasonMissingShares)
	}
	if len(raw) > maxSharesInput {
		return 0, errs.NewValidationError(ReasonWholeShares)
	}

	match := sharesPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, errs.NewValidationError(ReasonWholeShares)
	}

	quantity, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, errs.NewValidationError(ReasonWholeShares)
	}
	if quantity < 1 {
		return 0, errs.NewValidationError(ReasonPositiveShares)
	}

	return quantity, nil
}

// ParseCash parses a configured cash amount such as "10000.00"
func ParseCash(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errs.NewValidationError("invalid cash amount")
	}
	if amount.IsNegative() {
		return decimal.Zero, errs.NewValidationError("cash cannot be negative")
	}
	return amount, nil
}

// NormalizeSymbol trims and upper-cases a ticker so one company maps to one holding
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// FormatUSD renders an amount as US dollars, e.g. "$1,234.56"
func FormatUSD(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
