package user

import (
	"github.com/shopspring/decimal"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
)

// Rejection reasons for the login and registration forms
const (
	ReasonMissingUsername    = "must provide username"
	ReasonMissingPassword    = "must provide password"
	ReasonInvalidCredentials = "invalid username and/or password"
	ReasonUsernameTaken      = "this username is taken"
	ReasonMissingConfirm     = "must confirm password"
	ReasonPasswordMismatch   = "passwords do not match"
)

// UserUseCase handles registration and login
type UserUseCase struct {
	userRepo     persistence.UserRepository
	hasher       coreport.PasswordHasher
	initialCash  decimal.Decimal
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewUserUseCase creates a new UserUseCase; new accounts are funded with initialCash
func NewUserUseCase(
	userRepo persistence.UserRepository,
	hasher coreport.PasswordHasher,
	initialCash decimal.Decimal,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		hasher:       hasher,
		initialCash:  initialCash,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Compile-time check: ensure UserUseCase implements the port
var _ usecase.UserUseCase = (*UserUseCase)(nil)
