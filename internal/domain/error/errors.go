package error

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for standardized log fields
const (
	// 4xxx - Client errors
	CodeValidation           = 4001
	CodeInsufficientResource = 4002
	CodeDuplicateUser        = 4003
	CodeNotFound             = 4040
	CodeUserNotFound         = 4041
	CodeQuoteNotFound        = 4042
	CodeSessionNotFound      = 4043

	// 5xxx - Server errors
	CodeInternalServer      = 5000
	CodeIntegrityFault      = 5001
	CodeDatabaseConnection  = 5002
	CodeUpstreamUnavailable = 5020
)

// Base error kinds
var (
	// ErrValidation is returned when submitted input is missing or malformed
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInsufficientResource is returned when a user lacks the cash or shares an order needs
	ErrInsufficientResource = errors.New("insufficient resource")

	// ErrIntegrityFault is returned when stored state and the price source disagree about a held symbol
	ErrIntegrityFault = errors.New("integrity fault")

	// ErrUpstreamUnavailable is returned when the price source cannot be reached or answers garbage
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when trying to create a user whose username is taken
	ErrDuplicateUser = errors.New("user already exists")

	// ErrQuoteNotFound is returned by a price oracle when the symbol is unknown
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrSessionNotFound is returned when a session token is unknown or expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrIntegrityFault):
		return CodeIntegrityFault
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrQuoteNotFound):
		return CodeQuoteNotFound
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrDuplicateUser):
		return CodeDuplicateUser
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientResource):
		return CodeInsufficientResource
	case errors.Is(err, ErrUpstreamUnavailable):
		return CodeUpstreamUnavailable
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// StatusCode maps an error to the HTTP status of the apology page.
// Every user-facing rejection is a 403.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrIntegrityFault):
		return http.StatusConflict
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInsufficientResource):
		return http.StatusForbidden
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that is safe to show the user.
func PublicMessage(err error) string {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason
	}
	if errors.Is(err, ErrUpstreamUnavailable) {
		return "price service unavailable"
	}
	return ErrInternalServer.Error()
}

// RejectionError is a user-facing refusal of a request, carrying the reason shown on the apology page
type RejectionError struct {
	Kind   error
	Reason string
	UserID uint64
	Symbol string
	Err    error
}

// Error implements the error interface for RejectionError
func (e *RejectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is the rejection's kind
func (e *RejectionError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause, if any
func (e *RejectionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *RejectionError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "rejection",
		"kind":       e.Kind.Error(),
		"reason":     e.Reason,
		"error_code": ErrorCode(e),
	}
	if e.UserID != 0 {
		fields["user_id"] = e.UserID
	}
	if e.Symbol != "" {
		fields["symbol"] = e.Symbol
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// WithUser returns the rejection annotated with the acting user
func (e *RejectionError) WithUser(userID uint64) *RejectionError {
	e.UserID = userID
	return e
}

// WithSymbol returns the rejection annotated with the symbol involved
func (e *RejectionError) WithSymbol(symbol string) *RejectionError {
	e.Symbol = symbol
	return e
}

// NewValidationError creates a rejection for missing or malformed input
func NewValidationError(reason string) *RejectionError {
	return &RejectionError{Kind: ErrValidation, Reason: reason}
}

// NewNotFoundError creates a rejection for a referenced thing that does not exist
func NewNotFoundError(reason string) *RejectionError {
	return &RejectionError{Kind: ErrNotFound, Reason: reason}
}

// NewInsufficientResourceError creates a rejection for missing cash or shares
func NewInsufficientResourceError(reason string) *RejectionError {
	return &RejectionError{Kind: ErrInsufficientResource, Reason: reason}
}

// NewIntegrityFault creates an error for a held symbol the price source no longer knows
func NewIntegrityFault(symbol string, cause error) *RejectionError {
	return &RejectionError{
		Kind:   ErrIntegrityFault,
		Reason: fmt.Sprintf("no price available for held stock %s", symbol),
		Symbol: symbol,
		Err:    cause,
	}
}

// UpstreamError wraps a failure talking to the price source
type UpstreamError struct {
	Service string
	Err     error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

// Is checks if the target error is an ErrUpstreamUnavailable
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// Unwrap returns the underlying error
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *UpstreamError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "upstream_unavailable",
		"service":    e.Service,
		"error":      e.Err.Error(),
		"error_code": CodeUpstreamUnavailable,
	}
}

// NewUpstreamError creates a new upstream failure for the named service
func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// LogFields extracts structured fields from err when it provides them
func LogFields(err error) map[string]any {
	var withFields interface{ LogFields() map[string]any }
	if errors.As(err, &withFields) {
		return withFields.LogFields()
	}
	return map[string]any{
		"error":      err.Error(),
		"error_code": ErrorCode(err),
	}
}

// IsRejection checks if the error is a user-facing rejection
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}
