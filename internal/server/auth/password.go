// Package auth implements credential primitives for the backend:
// one-way password hashing and signed access/recovery tokens.
package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes plaintext passwords and verifies candidates against
// stored hashes. Implementations must be salted and one-way.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) bool
}

// BcryptHasher is the production PasswordHasher. bcrypt salts internally, so
// two hashes of the same password differ, and CompareHashAndPassword runs in
// constant time with respect to the mismatch position.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost factor.
// A cost of 0 selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether hashed was produced from password. Malformed hashes
// are not an error, just a mismatch.
func (h *BcryptHasher) Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
