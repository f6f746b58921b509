// Package auth verifies bearer tokens issued by the account service and
// extracts the caller's identity from them. Token issuance and password
// handling live elsewhere; this package only checks signatures and claims.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated indicates a missing, expired or otherwise invalid token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID   string
	Username string
}

// Claims is the token payload this service understands.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed bearer tokens.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier builds a Verifier for tokens signed with the given shared
// secret. When issuer is non-empty, tokens from other issuers are rejected.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a raw token string and returns the caller's
// identity. All failures collapse into ErrUnauthenticated so handlers cannot
// leak why a token was rejected.
func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return Identity{}, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return Identity{}, ErrUnauthenticated
	}

	return Identity{UserID: claims.Subject, Username: claims.Username}, nil
}
