package auth

import "unicode"

// Password-policy messages, surfaced verbatim to clients.
const (
	reasonTooShort = "Password must be at least 8 characters long"
	reasonNoLetter = "Password must contain at least one letter"
	reasonNoDigit  = "Password must contain at least one number"
)

// ValidatePassword checks a candidate password at signup time. Rules are
// checked in priority order (length, then letter, then digit) and the
// first failure wins.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &WeakPasswordError{Reason: reasonTooShort}
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter {
		return &WeakPasswordError{Reason: reasonNoLetter}
	}
	if !hasDigit {
		return &WeakPasswordError{Reason: reasonNoDigit}
	}

	return nil
}
