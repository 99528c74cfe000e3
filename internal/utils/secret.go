package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// VerifySecret compares a supplied secret against the configured one. The
// hash form (bcrypt) is preferred; the plain form falls back to a
// constant-time comparison. With neither configured nothing matches — open
// mode is decided by the caller, not here.
func VerifySecret(supplied, plain, hash string) bool {
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(supplied)) == nil
	}
	if plain != "" {
		return subtle.ConstantTimeCompare([]byte(supplied), []byte(plain)) == 1
	}
	return false
}

// HashSecret returns the bcrypt hash of a secret at the given cost. Used by
// operators to produce SHARED_SECRET_HASH values.
func HashSecret(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
