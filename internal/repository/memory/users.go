// Package memory holds an in-memory UserRepo. It backs unit tests and
// single-process runs without postgres, and honors the same contract:
// case-insensitive uniqueness, atomic create, per-username serialization.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/models"
	"github.com/policynav/authcore/internal/repository"
)

type UserRepo struct {
	mu sync.Mutex

	// Keyed by lowercased username. A single mutex is enough here: the map
	// operations are trivially short next to the bcrypt work around them.
	users map[string]models.User
}

var _ repository.UserRepo = (*UserRepo)(nil)

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]models.User)}
}

func (r *UserRepo) CreateUser(_ context.Context, arg repository.CreateUserParams) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(arg.Username)
	if _, ok := r.users[key]; ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	user := models.User{
		ID:                 uuid.New(),
		CreatedAt:          time.Now().Truncate(time.Second),
		Username:           arg.Username,
		PasswordHash:       arg.PasswordHash,
		SecurityQuestionID: arg.SecurityQuestionID,
		SecurityAnswerHash: arg.SecurityAnswerHash,
	}
	r.users[key] = user

	return user, nil
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[strings.ToLower(username)]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return user, nil
}

func (r *UserRepo) UpdatePasswordHash(_ context.Context, username string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(username)
	user, ok := r.users[key]
	if !ok {
		return apperrors.ErrUserNotFound
	}

	user.PasswordHash = passwordHash
	r.users[key] = user

	return nil
}

func (r *UserRepo) TouchLogin(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(username)
	user, ok := r.users[key]
	if !ok {
		return apperrors.ErrUserNotFound
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.LoginCount++
	r.users[key] = user

	return nil
}
