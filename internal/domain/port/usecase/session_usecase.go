package usecase

import "context"

// Identity is the authenticated principal attached to a request
type Identity struct {
	UserID uint64
	Token  string
}

// SessionUseCase manages login sessions and their flash messages
type SessionUseCase interface {
	// Start opens a session for userID and returns its token
	Start(ctx context.Context, userID uint64) (string, error)

	// Resolve returns the identity behind a token
	Resolve(ctx context.Context, token string) (*Identity, error)

	// End closes the session; unknown tokens are ignored
	End(ctx context.Context, token string) error

	// Flash queues a message for the next page of this session
	Flash(ctx context.Context, token, message string) error

	// TakeFlash returns and clears the queued message
	TakeFlash(ctx context.Context, token string) (string, error)

	// PurgeExpired deletes sessions that have expired
	PurgeExpired(ctx context.Context) (int64, error)
}
