package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
	ConstraintError   ErrorType = "constraint"
	CanceledError     ErrorType = "canceled"
)

// ErrorClassifier sorts driver errors by SQLSTATE, falling back to message matching
// for errors that did not come from the postgres driver.
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CanceledError
	case c.IsDuplicateKeyError(err):
		return DuplicateKeyError
	case c.IsLockError(err):
		return LockError
	case c.IsConnectionError(err):
		return ConnectionError
	case c.IsConstraintError(err):
		return ConstraintError
	default:
		return ""
	}
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a unique violation
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || sqlState(err) == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}

// IsLockError checks if the error is a deadlock, serialization failure or lock timeout
func (c *ErrorClassifier) IsLockError(err error) bool {
	if err == nil {
		return false
	}
	switch sqlState(err) {
	case "40001", "40P01", "55P03":
		return true
	}
	return strings.Contains(err.Error(), "deadlock") ||
		strings.Contains(err.Error(), "could not serialize access")
}

// IsConnectionError checks if the error is related to database connectivity
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if strings.HasPrefix(sqlState(err), "08") {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "dial")
}

// IsConstraintError checks if the error is an integrity constraint violation of any kind
func (c *ErrorClassifier) IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if strings.HasPrefix(sqlState(err), "23") || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "violates")
}

// IsForeignKeyError checks if the error is a foreign key violation
func (c *ErrorClassifier) IsForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) || sqlState(err) == "23503"
}

// databaseError logs a failed statement and maps it onto the domain error kinds.
// notFound is returned for gorm.ErrRecordNotFound; duplicate is returned for unique
// violations when non-nil.
func databaseError(logger coreport.Logger, classifier *ErrorClassifier, operation string, err error, notFound, duplicate error, fields map[string]any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug(fmt.Sprintf("Record not found when %s", operation), fields)
		return notFound
	}

	logFields := map[string]any{
		"error":      err.Error(),
		"error_type": string(classifier.Classify(err)),
	}
	for k, v := range fields {
		logFields[k] = v
	}

	if duplicate != nil && classifier.IsDuplicateKeyError(err) {
		logger.Warn(fmt.Sprintf("Duplicate record when %s", operation), logFields)
		return duplicate
	}
	if classifier.Classify(err) == CanceledError {
		logger.Warn(fmt.Sprintf("Context ended when %s", operation), logFields)
		return fmt.Errorf("%s: %w", operation, err)
	}

	logger.Error(fmt.Sprintf("Database error when %s", operation), logFields)
	return fmt.Errorf("%w: %s: %s", errs.ErrDatabaseConnection, operation, err.Error())
}
