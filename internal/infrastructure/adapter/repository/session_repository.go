package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/model"
)

// SessionRepository implements SessionRepository interface using GORM
type SessionRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *SessionRepository {
	return &SessionRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *SessionRepository) handleDatabaseError(operation string, err error) error {
	return databaseError(r.logger, r.errorClassifier, operation, err, errs.ErrSessionNotFound, nil, nil)
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionModel := model.Session{
		Token:     session.Token,
		UserID:    session.UserID,
		Flash:     session.Flash,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&sessionModel).Error; err != nil {
		return r.handleDatabaseError("creating session", err)
	}
	return nil
}

// Get returns a live session
func (r *SessionRepository) Get(ctx context.Context, token string, now time.Time) (*entity.Session, error) {
	var sessionModel model.Session
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&sessionModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("getting session", err)
	}

	return &entity.Session{
		Token:     sessionModel.Token,
		UserID:    sessionModel.UserID,
		Flash:     sessionModel.Flash,
		ExpiresAt: sessionModel.ExpiresAt,
		CreatedAt: sessionModel.CreatedAt,
	}, nil
}

// Delete removes a session; deleting an unknown token is not an error
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error; err != nil {
		return r.handleDatabaseError("deleting session", err)
	}
	return nil
}

// SetFlash stores a one-shot message shown on the next page
func (r *SessionRepository) SetFlash(ctx context.Context, token, message string) error {
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{
			"flash":      message,
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		return r.handleDatabaseError("setting flash", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrSessionNotFound
	}
	return nil
}

// PopFlash returns and clears the pending message, empty when there is none
func (r *SessionRepository) PopFlash(ctx context.Context, token string) (string, error) {
	var message string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessionModel model.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ?", token).
			First(&sessionModel).Error; err != nil {
			return err
		}
		message = sessionModel.Flash
		if message == "" {
			return nil
		}
		return tx.Model(&sessionModel).Updates(map[string]interface{}{
			"flash":      "",
			"updated_at": r.timeProvider.Now(),
		}).Error
	})
	if err != nil {
		return "", r.handleDatabaseError("popping flash", err)
	}
	return message, nil
}

// DeleteExpired removes sessions that expired before now and reports how many
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	if result.Error != nil {
		return 0, r.handleDatabaseError("purging expired sessions", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Info("Expired sessions purged", map[string]any{
			"count": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
