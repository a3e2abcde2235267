package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/api/middleware"
	"github.com/Rrens/floorboard/internal/security"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthenticateAndRequireAdmin(t *testing.T) {
	jwt := security.NewJWTManager("test-secret-key-with-32-chars!!", time.Minute, time.Hour)
	auth := middleware.NewAuthMiddleware(jwt)
	admins := security.NewAdminList([]string{"admin@example.com"})
	h := auth.Authenticate(middleware.RequireAdmin(admins)(ok))

	token := func(email string) string {
		tok, err := jwt.GenerateAccessToken(uuid.New(), email)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"not admin", token("user@example.com"), http.StatusForbidden},
		{"admin", token("Admin@Example.com"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	f.keys = append(f.keys, key)
	return f.allowed, 0, time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC), f.err
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects over limit", func(t *testing.T) {
		l := &fakeLimiter{allowed: false}
		rec := httptest.NewRecorder()
		middleware.NewRateLimitMiddleware(l).Limit(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "2024-03-01T09:31:00Z", rec.Header().Get("X-RateLimit-Reset"))
		require.Len(t, l.keys, 1)
		assert.Contains(t, l.keys[0], "ip:")
	})

	t.Run("fails open", func(t *testing.T) {
		l := &fakeLimiter{err: errors.New("redis down")}
		rec := httptest.NewRecorder()
		middleware.NewRateLimitMiddleware(l).Limit(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestLogger_PassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	middleware.Logger(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
