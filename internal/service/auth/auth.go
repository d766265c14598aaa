// Package auth is the engine every external caller goes through: signup,
// login, session validation, logout and password reset. It owns the
// credential verification discipline; storage and token mechanics live in
// the repository and tokenmanager packages.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/logger"
	"github.com/policynav/authcore/internal/models"
	"github.com/policynav/authcore/internal/repository"
)

// TokenManager issues and verifies session tokens
type TokenManager interface {
	Issue(username string) (models.IssuedToken, error)
	Parse(token string) (username string, err error)
	Revoke(token string) error
}

type Config struct {
	// Hasher for passwords and security answers
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Minimum password length, defaults to 8
	MinPasswordLen int

	// Logger for internal diagnostics. Responses never carry them.
	// Defaults to a no-op logger
	Logger logger.Logger
}

type AuthService struct {
	token    TokenManager
	hasher   PasswordHasher
	userRepo repository.UserRepo
	logger   logger.Logger

	minPasswordLen int

	// Hash of a random throwaway secret. Compared against when the username
	// is unknown, so "no such user" costs the same as "wrong password".
	dummyHash string

	// Keys the decoy security question choice for unknown usernames.
	// Random per process: without it an attacker could precompute which
	// question an unknown username would get and spot mismatches.
	decoyKey []byte
}

func NewService(cfg Config, token TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	if token == nil || userRepo == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	minPasswordLen := cfg.MinPasswordLen
	if minPasswordLen == 0 {
		minPasswordLen = defaultMinPasswordLen
	}

	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("error while preparing dummy hash. Err: %w", err)
	}

	decoyKey := make([]byte, 32)
	if _, err := rand.Read(decoyKey); err != nil {
		return nil, fmt.Errorf("error while generating decoy key. Err: %w", err)
	}

	return &AuthService{
		token:          token,
		hasher:         hasher,
		userRepo:       userRepo,
		logger:         log,
		minPasswordLen: minPasswordLen,
		dummyHash:      dummyHash,
		decoyKey:       decoyKey,
	}, nil
}

// SignUp validates the requested account, hashes the secrets and creates
// the user. Validation runs before any storage call, and the plaintext
// password and answer never travel further than the hasher.
func (s *AuthService) SignUp(ctx context.Context, username, password string, questionID models.QuestionID, answer string) (models.User, error) {
	var user models.User

	if err := ValidateUsername(username); err != nil {
		return user, err
	}
	if err := ValidatePassword(password, s.minPasswordLen); err != nil {
		return user, err
	}
	if _, ok := models.QuestionByID(questionID); !ok {
		return user, apperrors.ErrInvalidQuestion
	}

	normalized := NormalizeAnswer(answer)
	if normalized == "" {
		return user, fmt.Errorf("%w: security answer must not be empty", apperrors.ErrInvalidQuestion)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}
	answerHash, err := s.hasher.Hash(normalized)
	if err != nil {
		return user, fmt.Errorf("can't use this as security answer. Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Username:           username,
		PasswordHash:       passwordHash,
		SecurityQuestionID: questionID,
		SecurityAnswerHash: answerHash,
	})
	if err != nil {
		return user, err
	}

	s.logger.Info("user signed up", "username", user.Username)
	return user, nil
}

// Login verifies the credentials and issues a session token.
// Unknown username and wrong password both come back as
// apperrors.ErrInvalidCredentials, and the unknown username path burns a
// hash comparison of the same cost, so the two are indistinguishable by
// response and by timing.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.IssuedToken, error) {
	var token models.IssuedToken

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return token, apperrors.ErrInvalidCredentials
	case err != nil:
		return token, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return token, apperrors.ErrInvalidCredentials
	}

	token, err = s.token.Issue(user.Username)
	if err != nil {
		return token, fmt.Errorf("token could not be issued, sorry. Err: %w", err)
	}

	// Login statistics are best effort: a failed bump must not fail a
	// correct login
	if err := s.userRepo.TouchLogin(ctx, user.Username); err != nil {
		s.logger.Warn("failed to update login stats", "username", user.Username, "error", err.Error())
	}

	return token, nil
}

// ValidateSession verifies a session token and returns the username it
// authenticates. Every protected operation in the surrounding system goes
// through this gate. Any failure, expired, forged, revoked or malformed,
// collapses into apperrors.ErrUnauthorized: the distinction is logged for
// diagnostics but deliberately withheld from the caller.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (string, error) {
	username, err := s.token.Parse(token)
	if err != nil {
		s.logger.Debug("session token rejected", "reason", err.Error())
		return "", apperrors.ErrUnauthorized
	}

	return username, nil
}

// Logout invalidates the session server side: the token lands in the
// revocation set and fails ValidateSession until its natural expiry, after
// which the entry is pruned. Tokens that don't verify are ignored, logout
// never fails from the caller's perspective.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if err := s.token.Revoke(token); err != nil {
		s.logger.Debug("logout with unusable token", "reason", err.Error())
	}
}

// ResetPassword replaces the account password after a successful security
// answer challenge. The answer goes through the same normalization as at
// signup. Unknown username and wrong answer collapse into
// apperrors.ErrInvalidCredentials, with a dummy comparison on the unknown
// path, for the same enumeration resistance reasons as Login.
func (s *AuthService) ResetPassword(ctx context.Context, username, answer, newPassword string) error {
	normalized := NormalizeAnswer(answer)

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, normalized)
		return apperrors.ErrInvalidCredentials
	case err != nil:
		return fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.SecurityAnswerHash, normalized); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword, s.minPasswordLen); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password. Err: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.Username, hash); err != nil {
		return fmt.Errorf("error while updating password. Err: %w", err)
	}

	s.logger.Info("password reset", "username", user.Username)
	return nil
}

// SecurityQuestion returns the question to challenge the user with during
// password recovery. For unknown usernames it returns a decoy question
// picked deterministically from the same set, so the lookup reveals nothing
// about whether the account exists. The decoy stays stable for a given
// username within a process lifetime.
func (s *AuthService) SecurityQuestion(ctx context.Context, username string) (models.SecurityQuestion, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return s.decoyQuestion(username), nil
	case err != nil:
		return models.SecurityQuestion{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	question, ok := models.QuestionByID(user.SecurityQuestionID)
	if !ok {
		// Stored question id no longer in the set, should not happen
		return models.SecurityQuestion{}, fmt.Errorf("account has unknown question id %q", user.SecurityQuestionID)
	}

	return question, nil
}

func (s *AuthService) decoyQuestion(username string) models.SecurityQuestion {
	mac := hmac.New(sha256.New, s.decoyKey)
	mac.Write([]byte(NormalizeAnswer(username)))
	sum := mac.Sum(nil)
	return models.QuestionAt(binary.BigEndian.Uint64(sum[:8]))
}
