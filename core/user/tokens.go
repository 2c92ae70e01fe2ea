package user

import (
	"errors"
	"time"
)

var ErrTokenRevoked = errors.New("token is blacklisted")

// TokenRepository blacklists revoked refresh tokens by their ID (jti)
// until they would have expired anyway.
type TokenRepository interface {
	// RevokeToken blacklists the token. Returns ErrTokenRevoked if it already is.
	RevokeToken(jti string, expiresAt time.Time) error
	IsTokenRevoked(jti string) (bool, error)
}
