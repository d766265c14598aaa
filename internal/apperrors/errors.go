package apperrors

import (
	"errors"
)

var (
	// Signup time errors. Safe to show to the caller: they only reveal
	// facts about the requested account, not about other accounts.
	ErrInvalidUsername   = errors.New("username is invalid")
	ErrWeakPassword      = errors.New("password is too weak")
	ErrInvalidQuestion   = errors.New("unknown security question")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Returned by repositories only. Never surfaces to external callers:
	// the auth service collapses it into ErrInvalidCredentials.
	ErrUserNotFound = errors.New("user not found")

	// Single failure for login and password reset. Unknown username and
	// wrong secret deliberately look the same to block user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Single failure for session validation. Why exactly the token was
	// rejected stays in logs, never in the response.
	ErrUnauthorized = errors.New("unauthorized")

	// Token verification diagnostics. Internal only: handlers must map any
	// of these to ErrUnauthorized before answering.
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenRevoked   = errors.New("token is revoked")
)
