package model

import (
	"errors"
	"time"
)

// Identity is the verified subject of an access token.
type Identity struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// IssuedToken is a signed access token and its expiry.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DefaultTokenTTL is the lifetime of an access token.
const DefaultTokenTTL = time.Hour

// Error codes for authentication failures
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	ErrTokenMissing = newError(KindAuth, CodeUnauthorized, "Unauthorized: No token provided")
	ErrTokenInvalid = newError(KindAuth, CodeTokenInvalid, "Unauthorized: Invalid token")
	ErrTokenExpired = newError(KindAuth, CodeTokenExpired, "Unauthorized: Token expired")

	// ErrMissingSigningKey is a startup error, never returned to clients.
	ErrMissingSigningKey = errors.New("token signing key is not configured")
)
