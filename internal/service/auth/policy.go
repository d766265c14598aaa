package auth

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/policynav/authcore/internal/apperrors"
)

const (
	defaultMinPasswordLen = 8

	usernameMinLen = 3
	usernameMaxLen = 50
)

// Starts with a letter or digit, then letters, digits, dot, underscore or
// dash. Length bounds are checked separately for clearer errors.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateUsername checks the username shape before any storage call
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen {
		return fmt.Errorf("%w: shorter than %d characters", apperrors.ErrInvalidUsername, usernameMinLen)
	}
	if len(username) > usernameMaxLen {
		return fmt.Errorf("%w: longer than %d characters", apperrors.ErrInvalidUsername, usernameMaxLen)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: only letters, digits, '.', '_' and '-' are allowed", apperrors.ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword checks password strength: minimum length plus at least
// one letter and one digit
func ValidatePassword(password string, minLen int) error {
	if len(password) < minLen {
		return fmt.Errorf("%w: shorter than %d characters", apperrors.ErrWeakPassword, minLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: must contain at least one letter and one digit", apperrors.ErrWeakPassword)
	}

	return nil
}
