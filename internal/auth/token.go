package auth

import (
	"time"

	"github.com/stockchecker/stockchecker/internal/config"
)

// Claims are the validated contents of an access token.
type Claims struct {
	Subject   string    // user email
	TokenID   string    // unique per token (jti)
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService creates and validates self-contained access tokens.
// The issuer keeps no record of issued tokens; validity is structural
// (signature or AEAD tag, plus expiry). Revocation is a separate concern
// handled by the RevocationRegistry.
type TokenService interface {
	CreateToken(subject string, ttl time.Duration) (string, error)
	VerifyToken(token string) (*Claims, error)
}

// NewTokenService selects a token backend by name. PASETO v4.local is the
// default; HS256 JWT is kept for interoperability with existing clients.
func NewTokenService(backend string, secretKey []byte) (TokenService, error) {
	if backend == config.TokenBackendJWT {
		return NewJWTService(secretKey)
	}
	return NewPasetoService(secretKey)
}
