package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"elibrary/internal/auth"
	"elibrary/internal/book"
	"elibrary/internal/httpx"
	"elibrary/internal/platform/crypto"
	"elibrary/internal/session"
	"elibrary/internal/testutil"
	"elibrary/internal/user"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corsOrigin = "http://localhost:5173"

type revokedSet map[string]bool

func (s revokedSet) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func newTestRouter(t *testing.T, repo book.Repository, revoked revokedSet, ready ...readinessCheck) http.Handler {
	t.Helper()
	return newRouter(routerDeps{
		jwtSecret:    testutil.TestSecret,
		corsOrigin:   corsOrigin,
		maxBodyBytes: 1 << 10,
		books:        book.NewHTTPHandler(book.NewService(repo)),
		users:        user.NewHTTPHandler(user.NewService(nil)),
		sessions:     session.NewHTTPHandler(session.NewService(nil, nil)),
		auth:         auth.NewHTTPHandler(auth.NewService(auth.TokenConfig{Secret: testutil.TestSecret, AccessTTL: time.Minute}, nil, nil), httpx.CookieOptions{}),
		blacklist:    revoked,
		ready:        ready,
	})
}

func TestRouting_ProtectedRoutesRequireIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestRouter(t, book.NewMockRepository(ctrl), nil)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/books"},
		{http.MethodPost, "/api/books"},
		{http.MethodGet, "/api/books/1"},
		{http.MethodPut, "/api/books/1"},
		{http.MethodDelete, "/api/books/1"},
		{http.MethodGet, "/manage/info"},
		{http.MethodGet, "/hello"},
		{http.MethodPost, "/api/account/signout"},
		{http.MethodGet, "/api/account/sessions"},
		{http.MethodDelete, "/api/account/sessions/abc"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestRouting_BooksWithBearerToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	handler := newTestRouter(t, repo, nil)
	token := testutil.GenerateTestToken(testutil.TestSecret, "u1", "alice@example.com")

	repo.EXPECT().ListByOwner(gomock.Any(), "alice@example.com").Return(nil, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, token))

	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, string(resp.Raw))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRouting_NonIntegerBookIDIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestRouter(t, book.NewMockRepository(ctrl), nil)
	token := testutil.GenerateTestToken(testutil.TestSecret, "u1", "alice@example.com")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/api/books/dune", nil, token))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouting_ExpiredAndRevokedTokens(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("expired", func(t *testing.T) {
		handler := newTestRouter(t, book.NewMockRepository(ctrl), nil)
		token := testutil.GenerateExpiredToken(testutil.TestSecret, "u1", "alice@example.com")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked", func(t *testing.T) {
		token, jti, err := testTokenWithJTI()
		require.NoError(t, err)
		handler := newTestRouter(t, book.NewMockRepository(ctrl), revokedSet{jti: true})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouting_CORSPreflight(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestRouter(t, book.NewMockRepository(ctrl), nil)

	r := httptest.NewRequest(http.MethodOptions, "/api/books/1", nil)
	r.Header.Set("Origin", corsOrigin)
	r.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, corsOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouting_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestRouter(t, book.NewMockRepository(ctrl), nil)
	token := testutil.GenerateTestToken(testutil.TestSecret, "u1", "alice@example.com")

	body := `{"title":"` + strings.Repeat("x", 2048) + `","author":"a","description":"d"}`
	r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouting_Health(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		newTestRouter(t, book.NewMockRepository(ctrl), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready", func(t *testing.T) {
		ok := func(ctx context.Context) error { return nil }
		w := httptest.NewRecorder()
		newTestRouter(t, book.NewMockRepository(ctrl), nil, ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		down := func(ctx context.Context) error { return errors.New("db down") }
		w := httptest.NewRecorder()
		newTestRouter(t, book.NewMockRepository(ctrl), nil, down).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func testTokenWithJTI() (string, string, error) {
	return crypto.GenerateToken(testutil.TestSecret, "u1", "alice@example.com", time.Minute)
}
