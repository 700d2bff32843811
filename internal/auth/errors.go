package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password so that login failures never reveal account existence.
	ErrInvalidCredentials = errors.New("Incorrect email or password")

	// ErrMissingCredentials is returned when no bearer token is presented
	// or the Authorization header is not "Bearer <token>" shaped.
	ErrMissingCredentials = errors.New("Not authenticated")

	// ErrInvalidToken covers malformed tokens, bad signatures and expiry.
	ErrInvalidToken = errors.New("Could not validate credentials")

	// ErrExpiredToken is the expiry-specific case of ErrInvalidToken.
	// Callers treat both the same; tests distinguish them.
	ErrExpiredToken = errors.New("Token has expired")

	// ErrRevokedToken is returned for tokens explicitly logged out. Its
	// message is deliberately distinguishable from ErrInvalidToken.
	ErrRevokedToken = errors.New("Token has been revoked")

	// ErrUserNotFound is returned when a valid token names a subject that
	// no longer exists. Treated as unauthorized, not a server error.
	ErrUserNotFound = errors.New("User not found")

	// ErrInvalidEmailFormat rejects addresses net/mail cannot parse.
	ErrInvalidEmailFormat = errors.New("Invalid email address")
)

// WeakPasswordError reports the first password-policy rule a candidate
// password failed.
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return e.Reason
}

// IsWeakPassword reports whether err is a password-policy violation.
func IsWeakPassword(err error) bool {
	var wpe *WeakPasswordError
	return errors.As(err, &wpe)
}
