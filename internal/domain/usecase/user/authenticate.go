package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// Authenticate checks a username and password.
// Unknown users and wrong passwords get the same rejection.
func (u *UserUseCase) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.NewValidationError(ReasonMissingUsername)
	}
	if password == "" {
		return nil, errs.NewValidationError(ReasonMissingPassword)
	}

	user, err := u.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, errs.ErrUserNotFound) {
		return nil, errs.NewValidationError(ReasonInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !u.hasher.Matches(user.PasswordHash, password) {
		coreport.LoggerFromContext(ctx, u.logger).Warn("Failed login", map[string]any{
			"user_id": user.ID,
		})
		return nil, errs.NewValidationError(ReasonInvalidCredentials)
	}

	return user, nil
}
