package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/models"
	"github.com/policynav/authcore/internal/repository"
)

func newUserParams(username string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Username:           username,
		PasswordHash:       "password-hash",
		SecurityQuestionID: models.QuestionPetName,
		SecurityAnswerHash: "answer-hash",
	}
}

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create and read back", func(t *testing.T) {
			r := NewUserRepo()

			created, err := r.CreateUser(t.Context(), newUserParams("alice"))
			require.NoError(t, err)

			assert.NotEmpty(t, created.ID, "id should be generated")
			assert.False(t, created.CreatedAt.IsZero(), "created at should be set")
			assert.Equal(t, "alice", created.Username)

			got, err := r.GetUserByUsername(t.Context(), "alice")
			require.NoError(t, err)
			assert.Equal(t, created, got)
		})

		t.Run("duplicate username", func(t *testing.T) {
			r := NewUserRepo()

			_, err := r.CreateUser(t.Context(), newUserParams("alice"))
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), newUserParams("alice"))
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})

		t.Run("duplicate differs only by case", func(t *testing.T) {
			r := NewUserRepo()

			_, err := r.CreateUser(t.Context(), newUserParams("alice"))
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), newUserParams("ALICE"))
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})

		t.Run("concurrent creates of same username", func(t *testing.T) {
			r := NewUserRepo()

			const workers = 16
			errs := make(chan error, workers)
			var wg sync.WaitGroup
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := r.CreateUser(t.Context(), newUserParams("racer"))
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			succeeded := 0
			for err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			}

			assert.Equal(t, 1, succeeded, "exactly one create should win the race")
		})
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		t.Run("case-insensitive, case-preserving", func(t *testing.T) {
			r := NewUserRepo()

			_, err := r.CreateUser(t.Context(), newUserParams("Alice"))
			require.NoError(t, err)

			got, err := r.GetUserByUsername(t.Context(), "alice")
			require.NoError(t, err)
			assert.Equal(t, "Alice", got.Username, "stored case should be preserved")
		})

		t.Run("not found", func(t *testing.T) {
			r := NewUserRepo()

			_, err := r.GetUserByUsername(t.Context(), "nobody")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("UpdatePasswordHash", func(t *testing.T) {
		t.Run("replaces hash only", func(t *testing.T) {
			r := NewUserRepo()

			created, err := r.CreateUser(t.Context(), newUserParams("alice"))
			require.NoError(t, err)

			err = r.UpdatePasswordHash(t.Context(), "alice", "new-hash")
			require.NoError(t, err)

			got, err := r.GetUserByUsername(t.Context(), "alice")
			require.NoError(t, err)
			assert.Equal(t, "new-hash", got.PasswordHash)
			assert.Equal(t, created.SecurityAnswerHash, got.SecurityAnswerHash, "other fields untouched")
			assert.Equal(t, created.CreatedAt, got.CreatedAt, "created at is immutable")
		})

		t.Run("not found", func(t *testing.T) {
			r := NewUserRepo()

			err := r.UpdatePasswordHash(t.Context(), "nobody", "new-hash")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("TouchLogin", func(t *testing.T) {
		t.Run("bumps stats", func(t *testing.T) {
			r := NewUserRepo()

			_, err := r.CreateUser(t.Context(), newUserParams("alice"))
			require.NoError(t, err)

			require.NoError(t, r.TouchLogin(t.Context(), "alice"))
			require.NoError(t, r.TouchLogin(t.Context(), "alice"))

			got, err := r.GetUserByUsername(t.Context(), "alice")
			require.NoError(t, err)
			assert.Equal(t, int64(2), got.LoginCount)
			require.NotNil(t, got.LastLoginAt)
		})

		t.Run("not found", func(t *testing.T) {
			r := NewUserRepo()

			err := r.TouchLogin(t.Context(), "nobody")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
