// Package tokenmanager issues and verifies the signed session tokens the
// auth service hands out on login. Tokens are stateless JWTs: nothing is
// persisted, expiry and subject live in the signed claims. The one piece of
// state is the revocation set, which lets logout invalidate a token before
// its natural expiry.
package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/models"
)

const (
	defaultTokenTTL      = 30 * time.Minute
	defaultSigningMethod = "HS256"
)

type SessionClaims struct {
	jwt.RegisteredClaims
}

// Config for TokenManager with sensible defaults
type Config struct {
	// Secret key to sign session tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Session token lifetime. Fixed configuration, never caller controlled,
	// so no client can ask for an unbounded token
	// If not set than default is used
	TTL time.Duration
}

type TokenManager struct {
	// Secret key to sign session tokens
	// Immutable after construction. Rotating it means building a new
	// manager, which invalidates every previously issued token.
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Session token lifetime
	ttl time.Duration

	// Tokens revoked before their natural expiry, keyed by jti
	revoked *revocationSet
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	if cfg.TTL == 0 {
		cfg.TTL = defaultTokenTTL
	}

	return &TokenManager{
		key:     cfg.SecretKey,
		alg:     jwt.GetSigningMethod(cfg.Alg),
		ttl:     cfg.TTL,
		revoked: newRevocationSet(),
	}, nil
}

// Issue creates a signed session token for the username
func (m *TokenManager) Issue(username string) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(
		m.alg,
		SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   username,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		},
	)

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing session token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse verifies a session token and returns the username it authenticates.
// Signature and claim checks run first: no claim, expiry included, is
// trusted before the signature is known good. The revocation set is
// consulted only after that.
//
// Failures come back as the diagnostic sentinels ErrTokenExpired,
// ErrTokenSignature, ErrTokenMalformed, ErrTokenRevoked. Callers answering
// external requests must collapse all of them into one opaque outcome.
func (m *TokenManager) Parse(token string) (username string, err error) {
	claims, err := m.parseClaims(token, true)
	if err != nil {
		return "", err
	}

	if m.revoked.Contains(claims.ID) {
		return "", apperrors.ErrTokenRevoked
	}

	return claims.Subject, nil
}

// Revoke invalidates a session token before its natural expiry.
// Only tokens with a valid signature get into the set, and an already
// expired token is a no-op: it can never validate again anyway, keeping it
// would only grow the set.
func (m *TokenManager) Revoke(token string) error {
	claims, err := m.parseClaims(token, false)
	if err != nil {
		return err
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil
	}

	m.revoked.Add(claims.ID, claims.ExpiresAt.Time)
	return nil
}

// PruneRevoked drops revocation entries whose token has expired naturally
// and returns how many were removed. Revoke prunes opportunistically too,
// this is for callers that want a periodic sweep.
func (m *TokenManager) PruneRevoked() int {
	return m.revoked.Prune(time.Now())
}

func (m *TokenManager) parseClaims(token string, validateClaims bool) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		opts...,
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, apperrors.ErrTokenSignature
	default:
		return nil, fmt.Errorf("%w. Err: %v", apperrors.ErrTokenMalformed, err)
	}
}
