package usecase

import (
	"context"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// RegisterRequest is the content of the registration form
type RegisterRequest struct {
	Username     string
	Password     string
	Confirmation string
}

// UserUseCase defines account operations
type UserUseCase interface {
	// Register creates a funded account and returns the stored user
	Register(ctx context.Context, req RegisterRequest) (*entity.User, error)

	// Authenticate checks credentials and returns the matching user
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}
