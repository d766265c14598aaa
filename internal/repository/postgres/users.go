package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/models"
	"github.com/policynav/authcore/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

var _ repository.UserRepo = (*UserRepo)(nil)

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, password_hash, security_question_id, security_answer_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, username, password_hash, security_question_id, security_answer_hash, last_login_at, login_count
`

// CreateUser inserts the account. The unique index on lower(username) makes
// the uniqueness check atomic with the insert, so racing creates of the same
// username resolve to one winner inside postgres.
func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), arg.Username, arg.PasswordHash, arg.SecurityQuestionID, arg.SecurityAnswerHash,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrUserAlreadyExists
		}
	}

	return user, err
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT id, created_at, username, password_hash, security_question_id, security_answer_hash, last_login_at, login_count
FROM users
WHERE lower(username) = lower($1)
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const updatePasswordHash = `-- name: UpdatePasswordHash
UPDATE users
SET password_hash = $2
WHERE lower(username) = lower($1)
`

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, updatePasswordHash, username, passwordHash)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

const touchLogin = `-- name: TouchLogin
UPDATE users
SET last_login_at = now(), login_count = login_count + 1
WHERE lower(username) = lower($1)
`

func (r *UserRepo) TouchLogin(ctx context.Context, username string) error {
	tag, err := r.DB.Exec(ctx, touchLogin, username)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.Username, &u.PasswordHash,
		&u.SecurityQuestionID, &u.SecurityAnswerHash,
		&u.LastLoginAt, &u.LoginCount,
	)
	return u, err
}
