package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
)

// Register validates the registration form, stores a funded account and
// returns it with the ID the store assigned.
func (u *UserUseCase) Register(ctx context.Context, req usecase.RegisterRequest) (*entity.User, error) {
	log := coreport.LoggerFromContext(ctx, u.logger)
	username := strings.TrimSpace(req.Username)

	if username == "" {
		return nil, errs.NewValidationError(ReasonMissingUsername)
	}

	_, err := u.userRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, errs.NewValidationError(ReasonUsernameTaken)
	case !errors.Is(err, errs.ErrUserNotFound):
		return nil, fmt.Errorf("check username: %w", err)
	}

	if req.Password == "" {
		return nil, errs.NewValidationError(ReasonMissingPassword)
	}
	if req.Confirmation == "" {
		return nil, errs.NewValidationError(ReasonMissingConfirm)
	}
	if req.Password != req.Confirmation {
		return nil, errs.NewValidationError(ReasonPasswordMismatch)
	}

	hash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := entity.NewUser(username, hash, u.initialCash, u.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name
		if errors.Is(err, errs.ErrDuplicateUser) {
			return nil, errs.NewValidationError(ReasonUsernameTaken)
		}
		log.Error("Failed to create user", map[string]any{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}

	log.Info("User registered", map[string]any{
		"user_id":      user.ID,
		"username":     username,
		"initial_cash": user.Cash().String(),
	})
	return user, nil
}
