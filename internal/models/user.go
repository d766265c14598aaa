package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	CreatedAt time.Time

	// Username is stored as the user typed it, but uniqueness and lookups
	// are case-insensitive
	Username string

	// bcrypt strings, salt embedded. Plaintext never gets further than the
	// hasher call
	PasswordHash       string
	SecurityQuestionID QuestionID
	SecurityAnswerHash string

	// Login statistics, updated on every successful login
	LastLoginAt *time.Time // nil if user never logged in
	LoginCount  int64
}
