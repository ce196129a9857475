package core

// PasswordHasher turns passwords into one-way hashes and checks them
type PasswordHasher interface {
	// Hash returns a salted hash of password
	Hash(password string) (string, error)
	// Matches reports whether password produces hash
	Matches(hash, password string) bool
}
