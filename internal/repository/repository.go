package repository

import (
	"context"

	"github.com/policynav/authcore/internal/models"
)

type CreateUserParams struct {
	Username           string
	PasswordHash       string
	SecurityQuestionID models.QuestionID
	SecurityAnswerHash string
}

// UserRepo is the single owner of persisted account records.
// The auth service is the only writer.
type UserRepo interface {
	// Create user with already hashed credentials
	// Username uniqueness is case-insensitive and checked atomically with
	// the insert: two concurrent creates of the same username must yield
	// exactly one success and one apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by username, case-insensitive
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Replace the stored password hash. The only mutation path besides
	// TouchLogin: accounts are otherwise immutable after creation.
	// If user not found must return apperrors.ErrUserNotFound
	UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error

	// Record a successful login: set last login time, bump login counter
	// If user not found must return apperrors.ErrUserNotFound
	TouchLogin(ctx context.Context, username string) error
}
