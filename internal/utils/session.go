// Package utils provides helpers for session token issuing and shared-secret
// verification.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed HS256 JWT proving the holder passed the shared
// secret check (or that the deployment runs in open mode). It carries no
// identity beyond "authorized": the register has a single shared secret, not
// user accounts.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs a session token with the given TTL in
// minutes. Claims are the standard exp/iat plus a fixed subject.
func NewSessionToken(secret string, ttlMin int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": "register",
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}
