// Package auth wraps the password hashing and session token primitives.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the 10 rounds the registration form has always used
const DefaultCost = 10

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes)
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes and verifies passwords with bcrypt
type Hasher struct {
	cost      int
	dummyHash []byte
}

// NewHasher creates a Hasher with the given bcrypt cost.
// The dummy hash is built here so no login pays for it.
func NewHasher(cost int) *Hasher {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	return &Hasher{cost: cost, dummyHash: dummy}
}

// Hash generates a salted bcrypt hash from a plaintext password
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks a password against a bcrypt hash in constant time
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy burns the same work as Verify against a throwaway hash.
// Login calls it for unknown usernames so both failure paths take equally long.
func (h *Hasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
