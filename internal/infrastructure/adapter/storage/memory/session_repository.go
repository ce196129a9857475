package memory

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
)

type sessionRepository struct {
	store *Store
}

func (r *sessionRepository) Create(_ context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.sessions[session.Token] = *session
	return nil
}

func (r *sessionRepository) Get(_ context.Context, token string, now time.Time) (*entity.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	session, ok := r.store.sessions[token]
	if !ok || session.Expired(now) {
		return nil, errs.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Delete(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, token)
	return nil
}

func (r *sessionRepository) SetFlash(_ context.Context, token, message string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	session, ok := r.store.sessions[token]
	if !ok {
		return errs.ErrSessionNotFound
	}
	session.Flash = message
	r.store.sessions[token] = session
	return nil
}

func (r *sessionRepository) PopFlash(_ context.Context, token string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	session, ok := r.store.sessions[token]
	if !ok {
		return "", errs.ErrSessionNotFound
	}
	message := session.Flash
	session.Flash = ""
	r.store.sessions[token] = session
	return message, nil
}

func (r *sessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for token, session := range r.store.sessions {
		if session.Expired(now) {
			delete(r.store.sessions, token)
			removed++
		}
	}
	return removed, nil
}
