package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elibrary/internal/httpx"
	"elibrary/internal/platform/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, s *Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(Session), args.Error(1)
}

func (m *mockRepo) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

func (m *mockRepo) Rotate(ctx context.Context, oldHash string, next *Session) error {
	return m.Called(ctx, oldHash, next).Error(0)
}

func (m *mockRepo) DeleteForUser(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *mockRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockRepo) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockBlacklist struct {
	mock.Mock
}

func (m *mockBlacklist) Add(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	return m.Called(ctx, jti, userID, expiresAt).Error(0)
}

func (m *mockBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlacklist) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("live token is blacklisted", func(t *testing.T) {
		bl := new(mockBlacklist)
		svc := NewService(new(mockRepo), bl)
		exp := time.Now().Add(time.Minute)
		bl.On("Add", ctx, "jti-1", "u1", exp).Return(nil)

		require.NoError(t, svc.Revoke(ctx, "jti-1", "u1", exp))
		bl.AssertExpectations(t)
	})

	t.Run("expired token is ignored", func(t *testing.T) {
		bl := new(mockBlacklist)
		svc := NewService(new(mockRepo), bl)

		require.NoError(t, svc.Revoke(ctx, "jti-1", "u1", time.Now().Add(-time.Minute)))
		bl.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ListByUserID_NeverNil(t *testing.T) {
	repo := new(mockRepo)
	repo.On("ListByUserID", mock.Anything, "u1").Return(nil, nil)
	svc := NewService(repo, new(mockBlacklist))

	sessions, err := svc.ListByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, sessions)
}

func TestService_Cleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("purges both stores", func(t *testing.T) {
		repo, bl := new(mockRepo), new(mockBlacklist)
		repo.On("CleanupExpired", ctx).Return(int64(2), nil)
		bl.On("CleanupExpired", ctx).Return(int64(1), nil)

		require.NoError(t, NewService(repo, bl).Cleanup(ctx))
		repo.AssertExpectations(t)
		bl.AssertExpectations(t)
	})

	t.Run("stops on session failure", func(t *testing.T) {
		repo, bl := new(mockRepo), new(mockBlacklist)
		repo.On("CleanupExpired", ctx).Return(int64(0), errors.New("db down"))

		assert.Error(t, NewService(repo, bl).Cleanup(ctx))
		bl.AssertNotCalled(t, "CleanupExpired", mock.Anything)
	})
}

func TestHTTPHandler_ListSessions(t *testing.T) {
	refresh := "refresh-token"
	now := time.Now()
	repo := new(mockRepo)
	repo.On("ListByUserID", mock.Anything, "u1").Return([]Session{
		{ID: "s1", UserID: "u1", RefreshTokenHash: crypto.HashToken(refresh), CreatedAt: now, LastUsedAt: now, ExpiresAt: now.Add(time.Hour)},
		{ID: "s2", UserID: "u1", RefreshTokenHash: crypto.HashToken("other"), CreatedAt: now, LastUsedAt: now, ExpiresAt: now.Add(time.Hour)},
	}, nil)
	handler := NewHTTPHandler(NewService(repo, new(mockBlacklist)))

	r := httptest.NewRequest(http.MethodGet, "/api/account/sessions", nil)
	r.AddCookie(&http.Cookie{Name: httpx.RefreshCookieName, Value: refresh})
	r = r.WithContext(httpx.ContextWithUser(r.Context(), "u1", "alice@example.com", "jti"))
	w := httptest.NewRecorder()

	handler.ListSessions(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.True(t, body.Data[0].IsCurrent)
	assert.False(t, body.Data[1].IsCurrent)
	assert.NotContains(t, w.Body.String(), crypto.HashToken(refresh))
}

func TestHTTPHandler_DeleteSession(t *testing.T) {
	tests := []struct {
		name       string
		sessionID  string
		repoErr    error
		wantStatus int
	}{
		{name: "own session", sessionID: "s1", wantStatus: http.StatusNoContent},
		{name: "someone else's session", sessionID: "s9", repoErr: ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "storage failure", sessionID: "s1", repoErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			repo.On("DeleteForUser", mock.Anything, tt.sessionID, "u1").Return(tt.repoErr)
			handler := NewHTTPHandler(NewService(repo, new(mockBlacklist)))

			r := httptest.NewRequest(http.MethodDelete, "/api/account/sessions/"+tt.sessionID, nil)
			r.SetPathValue("id", tt.sessionID)
			r = r.WithContext(httpx.ContextWithUser(r.Context(), "u1", "alice@example.com", "jti"))
			w := httptest.NewRecorder()

			handler.DeleteSession(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			repo.AssertExpectations(t)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(new(mockRepo), new(mockBlacklist)))
		w := httptest.NewRecorder()
		handler.DeleteSession(w, httptest.NewRequest(http.MethodDelete, "/api/account/sessions/s1", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
