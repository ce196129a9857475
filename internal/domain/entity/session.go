package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// Session binds an opaque browser token to a logged-in user
type Session struct {
	Token     string
	UserID    uint64
	Flash     string // One pending message shown on the next rendered page
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a session for userID that lives for ttl
func NewSession(token string, userID uint64, ttl coreport.Duration, timeProvider coreport.TimeProvider) (*Session, error) {
	if token == "" {
		return nil, errs.ErrSessionNotFound
	}
	if userID == 0 {
		return nil, errs.ErrUserNotFound
	}

	now := timeProvider.Now()
	return &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl.Std()),
		CreatedAt: now,
	}, nil
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
