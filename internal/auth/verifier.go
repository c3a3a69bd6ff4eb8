// Package auth verifies caller identity for the operation endpoint.
// Token issuance belongs to the external identity provider; this side
// only validates what it issued.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Principal is the verified caller identity.
type Principal struct {
	Email string
}

// Verifier validates a bearer token and returns the principal it was
// issued to.
type Verifier interface {
	Verify(token string) (*Principal, error)
}

// JWTVerifier verifies HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify implements Verifier
func (v *JWTVerifier) Verify(token string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	email := c.Email
	if email == "" {
		email = c.Subject
	}
	if email == "" {
		return nil, fmt.Errorf("%w: no identity claim", ErrInvalidToken)
	}

	return &Principal{Email: email}, nil
}
