package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/handlers/userctx"
)

type stubValidator struct {
	username string
	err      error

	gotToken string
}

func (s *stubValidator) ValidateSession(_ context.Context, token string) (string, error) {
	s.gotToken = token
	return s.username, s.err
}

func Test_BearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer sometoken", want: "sometoken"},
		{name: "case-insensitive scheme", header: "bearer sometoken", want: "sometoken"},
		{name: "missing header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwd2Q=", want: ""},
		{name: "scheme only", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			require.Equal(t, tt.want, BearerToken(r))
		})
	}
}

func Test_AuthMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("valid session passes username down", func(t *testing.T) {
		v := &stubValidator{username: "alice"}

		var gotUsername string
		var gotOk bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUsername, gotOk = userctx.FromContext(r.Context())
		})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()

		AuthMiddleware(v)(next).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "sometoken", v.gotToken)
		assert.True(t, gotOk, "username should be in context")
		assert.Equal(t, "alice", gotUsername)
	})

	t.Run("rejected session stops the chain", func(t *testing.T) {
		v := &stubValidator{err: apperrors.ErrUnauthorized}

		nextCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()

		AuthMiddleware(v)(next).ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled, "next handler must not run")
		assert.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Unauthorized"
			}`, w.Body.String())
	})

	t.Run("any validator error is the same 401", func(t *testing.T) {
		v := &stubValidator{err: errors.New("some internal detail")}

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		AuthMiddleware(v)(next).ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "internal detail", "diagnostics must not leak")
	})
}
