package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/logger"
)

func TestErrorClassifier(t *testing.T) {
	classifier := NewErrorClassifier()

	testCases := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"UniqueViolation", &pgconn.PgError{Code: "23505"}, DuplicateKeyError},
		{"TranslatedDuplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), DuplicateKeyError},
		{"Deadlock", &pgconn.PgError{Code: "40P01"}, LockError},
		{"SerializationFailure", &pgconn.PgError{Code: "40001"}, LockError},
		{"ConnectionFailure", &pgconn.PgError{Code: "08006"}, ConnectionError},
		{"Refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), ConnectionError},
		{"CheckViolation", &pgconn.PgError{Code: "23514"}, ConstraintError},
		{"Canceled", fmt.Errorf("query: %w", context.Canceled), CanceledError},
		{"Unknown", errors.New("something else"), ""},
		{"Nil", nil, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifier.Classify(tc.err))
		})
	}

	assert.True(t, classifier.IsForeignKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, classifier.IsForeignKeyError(&pgconn.PgError{Code: "23505"}))
}

func TestDatabaseError(t *testing.T) {
	log := logger.NewNoopLogger()
	classifier := NewErrorClassifier()

	t.Run("RecordNotFound", func(t *testing.T) {
		err := databaseError(log, classifier, "getting user", gorm.ErrRecordNotFound, errs.ErrUserNotFound, nil, nil)
		assert.Equal(t, errs.ErrUserNotFound, err)
	})

	t.Run("DuplicateMapsWhenRequested", func(t *testing.T) {
		err := databaseError(log, classifier, "creating user", gorm.ErrDuplicatedKey, errs.ErrUserNotFound, errs.ErrDuplicateUser, nil)
		assert.Equal(t, errs.ErrDuplicateUser, err)
	})

	t.Run("DuplicateWithoutMappingIsDatabaseError", func(t *testing.T) {
		err := databaseError(log, classifier, "creating session", gorm.ErrDuplicatedKey, errs.ErrSessionNotFound, nil, nil)
		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	})

	t.Run("CanceledKeepsContextError", func(t *testing.T) {
		err := databaseError(log, classifier, "listing", context.DeadlineExceeded, errs.ErrNotFound, nil, nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, errs.ErrDatabaseConnection)
	})

	t.Run("OtherErrorsHideNothingFromLogsButWrapKind", func(t *testing.T) {
		err := databaseError(log, classifier, "updating cash", errors.New("pq: relation missing"), errs.ErrUserNotFound, nil, map[string]any{"user_id": 1})
		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.Contains(t, err.Error(), "updating cash")
	})
}
