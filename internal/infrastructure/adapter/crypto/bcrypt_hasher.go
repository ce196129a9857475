package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// BcryptHasher implements PasswordHasher with bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost; out-of-range costs fall back to the default
func NewBcryptHasher(cost int) core.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Matches reports whether password produces hash
func (h *BcryptHasher) Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
