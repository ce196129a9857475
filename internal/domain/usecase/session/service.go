package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
)

// Service issues and resolves login sessions
type Service struct {
	repo         persistence.SessionRepository
	ttl          coreport.Duration
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewSessionService creates a session service whose sessions live for ttl
func NewSessionService(
	repo persistence.SessionRepository,
	ttl coreport.Duration,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		repo:         repo,
		ttl:          ttl,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Start opens a session for userID and returns its random token
func (s *Service) Start(ctx context.Context, userID uint64) (string, error) {
	session, err := entity.NewSession(uuid.NewString(), userID, s.ttl, s.timeProvider)
	if err != nil {
		return "", err
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	coreport.LoggerFromContext(ctx, s.logger).Info("Session started", map[string]any{
		"user_id":    userID,
		"expires_at": session.ExpiresAt,
	})
	return session.Token, nil
}

// Resolve returns the identity behind a live token.
// A token that misses because its session expired is removed on the way out.
func (s *Service) Resolve(ctx context.Context, token string) (*usecase.Identity, error) {
	if token == "" {
		return nil, errs.ErrSessionNotFound
	}

	session, err := s.repo.Get(ctx, token, s.timeProvider.Now())
	if errors.Is(err, errs.ErrSessionNotFound) {
		if delErr := s.repo.Delete(ctx, token); delErr != nil {
			coreport.LoggerFromContext(ctx, s.logger).Warn("Failed to drop expired session", map[string]any{
				"error": delErr.Error(),
			})
		}
		return nil, errs.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &usecase.Identity{UserID: session.UserID, Token: session.Token}, nil
}

// End forgets the session; unknown tokens are ignored
func (s *Service) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.Delete(ctx, token)
}

// Flash queues a message for the next page of this session
func (s *Service) Flash(ctx context.Context, token, message string) error {
	return s.repo.SetFlash(ctx, token, message)
}

// TakeFlash returns and clears the queued message
func (s *Service) TakeFlash(ctx context.Context, token string) (string, error) {
	message, err := s.repo.PopFlash(ctx, token)
	if errors.Is(err, errs.ErrSessionNotFound) {
		return "", nil
	}
	return message, err
}

// PurgeExpired deletes sessions that have expired
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.timeProvider.Now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if removed > 0 {
		s.logger.Info("Expired sessions purged", map[string]any{"removed": removed})
	}
	return removed, nil
}

// Compile-time check: ensure Service implements SessionUseCase
var _ usecase.SessionUseCase = (*Service)(nil)
