package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elibrary/internal/platform/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s stubBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

func callerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Caller", CallerFrom(r))
		w.Header().Set("X-User", UserIDFrom(r))
		w.Header().Set("X-Jti", TokenIDFrom(r))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	token, jti, err := crypto.GenerateToken(testSecret, "user-1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		blacklist  Blacklist
		wantStatus int
		wantCaller string
	}{
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
			wantCaller: "alice@example.com",
		},
		{
			name:       "access cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token}) },
			wantStatus: http.StatusOK,
			wantCaller: "alice@example.com",
		},
		{
			name:       "anonymous",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "revoked token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			blacklist:  stubBlacklist{revoked: map[string]bool{jti: true}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "blacklist unavailable",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			blacklist:  stubBlacklist{err: errors.New("redis down")},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not revoked",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			blacklist:  stubBlacklist{revoked: map[string]bool{"other": true}},
			wantStatus: http.StatusOK,
			wantCaller: "alice@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(testSecret, tt.blacklist)(callerEcho())

			r := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			tt.setup(r)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCaller, w.Header().Get("X-Caller"))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", w.Header().Get("X-User"))
				assert.Equal(t, jti, w.Header().Get("X-Jti"))
			} else {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestCallerFrom_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, CallerFrom(r))
	assert.Empty(t, UserIDFrom(r))
}

func TestCookieOptions(t *testing.T) {
	t.Run("secure cookies are cross-site", func(t *testing.T) {
		w := httptest.NewRecorder()
		CookieOptions{Secure: true}.SetAuthCookies(w, "access", time.Minute, "refresh", time.Hour)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2)
		for _, c := range cookies {
			assert.True(t, c.HttpOnly)
			assert.True(t, c.Secure)
			assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
		}
		assert.Equal(t, "access", cookies[0].Value)
		assert.Equal(t, 60, cookies[0].MaxAge)
	})

	t.Run("clear", func(t *testing.T) {
		w := httptest.NewRecorder()
		CookieOptions{}.ClearAuthCookies(w)

		for _, c := range w.Result().Cookies() {
			assert.Empty(t, c.Value)
			assert.Equal(t, -1, c.MaxAge)
		}
	})
}
