package persistence

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// UserRepository defines the identity store: credentials and cash per user
type UserRepository interface {
	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the surrounding transaction ends.
	// Must be called on a repository bound to a unit of work.
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByIDForUpdate(ctx context.Context, id uint64) (*entity.User, error)

	// GetByUsername retrieves a user by login name
	//
	// Possible errors:
	// - ErrUserNotFound: If no user has that username
	// - ErrDatabaseConnection: If database connection fails
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create inserts a new user and sets its ID
	//
	// Possible errors:
	// - ErrDuplicateUser: If the username is already taken
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// UpdateCash stores a new cash balance for the user
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	UpdateCash(ctx context.Context, userID uint64, cash decimal.Decimal) error
}
