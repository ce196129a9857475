package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// ReasonNotEnoughCash is shown when a purchase costs more than the user holds
const ReasonNotEnoughCash = "not enough cash"

// User represents a registered trader and the cash they hold
type User struct {
	ID           uint64          // Assigned by the store on insert
	Username     string          // Unique login name
	PasswordHash string          // bcrypt hash, never the plain password
	cash         decimal.Decimal // Mutated only by trade settlement (private)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a not-yet-stored user funded with initialCash
func NewUser(username, passwordHash string, initialCash decimal.Decimal, timeProvider coreport.TimeProvider) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errs.NewValidationError("must provide username")
	}
	if passwordHash == "" {
		return nil, errs.NewValidationError("must provide password")
	}
	if initialCash.IsNegative() {
		return nil, errs.NewValidationError("cash cannot be negative")
	}

	now := timeProvider.Now()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		cash:         initialCash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RestoreUser rebuilds a user from stored state (for repositories)
func RestoreUser(id uint64, username, passwordHash string, cash decimal.Decimal, createdAt, updatedAt time.Time) *User {
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		cash:         cash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Cash returns the current cash balance
func (u *User) Cash() decimal.Decimal {
	return u.cash
}

// CanAfford checks if the user has enough cash for a purchase
func (u *User) CanAfford(cost decimal.Decimal) bool {
	return u.cash.GreaterThanOrEqual(cost)
}

// Debit subtracts the amount from cash.
// Returns an insufficient-resource rejection if the cash would go negative.
func (u *User) Debit(amount decimal.Decimal, timeProvider coreport.TimeProvider) error {
	if !u.CanAfford(amount) {
		return errs.NewInsufficientResourceError(ReasonNotEnoughCash).WithUser(u.ID)
	}

	u.cash = u.cash.Sub(amount)
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// Credit adds sale proceeds to cash
func (u *User) Credit(amount decimal.Decimal, timeProvider coreport.TimeProvider) {
	u.cash = u.cash.Add(amount)
	u.UpdatedAt = timeProvider.Now()
}
