package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policynav/authcore/internal/apperrors"
)

func newManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()

	m, err := New(Config{SecretKey: "test-secret-key", TTL: ttl})
	require.NoError(t, err, "token manager should be created without errors")
	return m
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, defaultTokenTTL, m.ttl, "default token TTL should be set")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("fail without secret key", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err, "empty secret key must be rejected")
	})

	t.Run("Issue", func(t *testing.T) {
		t.Run("returns signed token", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			token, err := m.Issue("alice")

			require.NoError(t, err)
			assert.NotEmpty(t, token.Value, "session token should not be empty")
			assert.WithinDuration(t, time.Now().Add(30*time.Minute), token.ExpiresAt, time.Second)
		})

		t.Run("claims", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			issued, err := m.Issue("alice")
			require.NoError(t, err)

			// Parse and verify the token directly
			token, err := jwt.ParseWithClaims(issued.Value, &SessionClaims{}, func(token *jwt.Token) (any, error) {
				return []byte("test-secret-key"), nil
			})
			require.NoError(t, err)
			require.True(t, token.Valid, "session token should be valid")

			claims, ok := token.Claims.(*SessionClaims)
			require.True(t, ok, "claims should be of type SessionClaims")
			assert.Equal(t, "alice", claims.Subject, "subject should carry the username")
			assert.NotEmpty(t, claims.ID, "token has to has jti")
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second, "issued at should be close to now")
			assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)

			assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt.Time, 0, "expires at should match issued token")
		})

		t.Run("generate different tokens", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			first, err := m.Issue("alice")
			require.NoError(t, err)

			second, err := m.Issue("alice")
			require.NoError(t, err)

			assert.NotEqual(t, first.Value, second.Value, "tokens should differ by jti")
		})
	})

	t.Run("Parse", func(t *testing.T) {
		t.Run("valid token resolves username", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			issued, err := m.Issue("alice")
			require.NoError(t, err)

			username, err := m.Parse(issued.Value)

			require.NoError(t, err)
			assert.Equal(t, "alice", username)
		})

		t.Run("expired token", func(t *testing.T) {
			m := newManager(t, -time.Minute)

			issued, err := m.Issue("alice")
			require.NoError(t, err)

			_, err = m.Parse(issued.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenExpired)
		})

		t.Run("wrong key", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)
			other := newManager(t, 30*time.Minute)
			other.key = "other-secret-key"

			issued, err := other.Issue("alice")
			require.NoError(t, err)

			_, err = m.Parse(issued.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenSignature)
		})

		t.Run("expired forgery stays a signature error", func(t *testing.T) {
			// Expiry must not be trusted before the signature: a forged
			// token with a bogus expiry fails on the signature, not expiry
			m := newManager(t, -time.Minute)
			forger := newManager(t, -time.Minute)
			forger.key = "other-secret-key"

			issued, err := forger.Issue("alice")
			require.NoError(t, err)

			_, err = m.Parse(issued.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenSignature)
			require.NotErrorIs(t, err, apperrors.ErrTokenExpired)
		})

		t.Run("malformed token", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			_, err := m.Parse("not-even-a-jwt")

			require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
		})

		t.Run("alg confusion rejected", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			// Token signed with HS384 while the manager expects HS256
			claims := SessionClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "alice",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret-key"))
			require.NoError(t, err)

			_, err = m.Parse(signed)

			require.Error(t, err)
		})
	})

	t.Run("Revoke", func(t *testing.T) {
		t.Run("revoked token fails parse", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			issued, err := m.Issue("alice")
			require.NoError(t, err)

			require.NoError(t, m.Revoke(issued.Value))

			_, err = m.Parse(issued.Value)
			require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
		})

		t.Run("expired token is a no-op", func(t *testing.T) {
			m := newManager(t, -time.Minute)

			issued, err := m.Issue("alice")
			require.NoError(t, err)

			require.NoError(t, m.Revoke(issued.Value))

			m.revoked.mu.Lock()
			defer m.revoked.mu.Unlock()
			assert.Empty(t, m.revoked.entries, "expired token should not land in the revocation set")
		})

		t.Run("unsigned garbage rejected", func(t *testing.T) {
			m := newManager(t, 30*time.Minute)

			err := m.Revoke("not-even-a-jwt")

			require.Error(t, err, "garbage can't be revoked")
		})
	})

	t.Run("PruneRevoked", func(t *testing.T) {
		m := newManager(t, 30*time.Minute)

		issued, err := m.Issue("alice")
		require.NoError(t, err)
		require.NoError(t, m.Revoke(issued.Value))

		require.Equal(t, 0, m.PruneRevoked(), "live revocation should survive pruning")

		// Backdate the entry and prune again
		m.revoked.mu.Lock()
		for jti := range m.revoked.entries {
			m.revoked.entries[jti] = time.Now().Add(-time.Minute)
		}
		m.revoked.mu.Unlock()

		require.Equal(t, 1, m.PruneRevoked(), "expired revocation should be pruned")
	})
}
