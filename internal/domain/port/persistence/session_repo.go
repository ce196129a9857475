package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

// SessionRepository stores login sessions keyed by an opaque token
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *entity.Session) error

	// Get returns a live session
	//
	// Possible errors:
	// - ErrSessionNotFound: If the token is unknown or the session expired
	// - ErrDatabaseConnection: If database connection fails
	Get(ctx context.Context, token string, now time.Time) (*entity.Session, error)

	// Delete removes a session; deleting an unknown token is not an error
	Delete(ctx context.Context, token string) error

	// SetFlash stores a one-shot message shown on the next page
	SetFlash(ctx context.Context, token, message string) error

	// PopFlash returns and clears the pending message, empty when there is none
	PopFlash(ctx context.Context, token string) (string, error)

	// DeleteExpired removes sessions that expired before now and reports how many
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
