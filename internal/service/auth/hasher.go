package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Interface to create or compare secret hashes.
// Used for login passwords and for security question answers alike.
type PasswordHasher interface {
	// Generate hash from the secret. A fresh random salt is produced on
	// every call, so the same secret never hashes to the same digest twice.
	Hash(secret string) (string, error)

	// Compare known hash and user provided secret
	// Must be protected against timing attacks
	Compare(hash string, secret string) error
}

// Bcrypt secret hasher
// Will be used as default one if caller not provide it's own
//
// The secret is pre-hashed with SHA-256 so bcrypt's 72 byte input limit
// can't silently truncate long passwords. bcrypt itself generates the salt,
// embeds it in the digest and compares in constant time.
type BcryptHasher struct{}

func (h BcryptHasher) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hash string, secret string) error {
	sum := sha256.Sum256([]byte(secret))
	return bcrypt.CompareHashAndPassword([]byte(hash), sum[:])
}
