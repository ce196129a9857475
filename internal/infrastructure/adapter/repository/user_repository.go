package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/model"
)

// UserRepository implements UserRepository interface using GORM
type UserRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func userToEntity(m *model.User) *entity.User {
	return entity.RestoreUser(m.ID, m.Username, m.PasswordHash, m.Cash, m.CreatedAt, m.UpdatedAt)
}

func (r *UserRepository) handleDatabaseError(operation string, err error, fields map[string]any) error {
	return databaseError(r.logger, r.errorClassifier, operation, err, errs.ErrUserNotFound, errs.ErrDuplicateUser, fields)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting user", err, map[string]any{"user_id": id})
	}
	return userToEntity(&userModel), nil
}

// GetByIDForUpdate retrieves a user with SELECT ... FOR UPDATE so concurrent trades
// by the same user queue behind each other
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.User, error) {
	r.logger.Debug("Locking user row", map[string]any{
		"user_id": id,
	})

	var userModel model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&userModel, id).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking user", err, map[string]any{"user_id": id})
	}
	return userToEntity(&userModel), nil
}

// GetByUsername retrieves a user by login name
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userModel model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&userModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("getting user by username", err, map[string]any{"username": username})
	}
	return userToEntity(&userModel), nil
}

// Create inserts a new user and sets its ID
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := model.User{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Cash:         user.Cash(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		return r.handleDatabaseError("creating user", err, map[string]any{"username": user.Username})
	}
	user.ID = userModel.ID

	r.logger.Info("User created successfully", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"cash":     user.Cash().StringFixed(2),
	})
	return nil
}

// UpdateCash stores a new cash balance for the user
func (r *UserRepository) UpdateCash(ctx context.Context, userID uint64, cash decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"cash":       cash,
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating cash", result.Error, map[string]any{"user_id": userID})
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("User not found during cash update", map[string]any{
			"user_id": userID,
		})
		return errs.ErrUserNotFound
	}

	r.logger.Debug("Cash updated", map[string]any{
		"user_id": userID,
		"cash":    cash.StringFixed(2),
	})
	return nil
}
