package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"elibrary/internal/httpx"
	"elibrary/internal/platform/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and normalizes email", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewService(repo)

		repo.On("GetByEmail", ctx, "alice@example.com").Return(User{}, ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "alice@example.com" && u.ID != "" && crypto.VerifyPassword(u.PasswordHash, "Secret1!x")
		})).Return(nil)

		u, err := svc.Register(ctx, "  Alice@Example.com ", "Secret1!x")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewService(repo)

		repo.On("GetByEmail", ctx, "alice@example.com").Return(User{ID: "1"}, nil)

		_, err := svc.Register(ctx, "alice@example.com", "Secret1!x")
		assert.ErrorIs(t, err, ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewService(repo)

		repo.On("GetByEmail", ctx, "alice@example.com").Return(User{}, errors.New("db down"))

		_, err := svc.Register(ctx, "alice@example.com", "Secret1!x")
		assert.EqualError(t, err, "db down")
	})
}

func TestHTTPHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(repo *mockRepo)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: `{"email":"bob@example.com","password":"Secret1!x"}`,
			setup: func(repo *mockRepo) {
				repo.On("GetByEmail", mock.Anything, "bob@example.com").Return(User{}, ErrNotFound)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "weak password",
			body:       `{"email":"bob@example.com","password":"password"}`,
			setup:      func(repo *mockRepo) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "bad email",
			body:       `{"email":"bob","password":"Secret1!x"}`,
			setup:      func(repo *mockRepo) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "conflict",
			body: `{"email":"bob@example.com","password":"Secret1!x"}`,
			setup: func(repo *mockRepo) {
				repo.On("GetByEmail", mock.Anything, "bob@example.com").Return(User{ID: "1"}, nil)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			tt.setup(repo)
			handler := NewHTTPHandler(NewService(repo))

			w := httptest.NewRecorder()
			handler.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestHTTPHandler_ManageInfo(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, "u1").Return(User{ID: "u1", Email: "alice@example.com"}, nil)
	repo.On("GetByID", mock.Anything, "gone").Return(User{}, ErrNotFound)
	handler := NewHTTPHandler(NewService(repo))

	t.Run("ok", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/manage/info", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "u1", "alice@example.com", "jti"))
		w := httptest.NewRecorder()

		handler.ManageInfo(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"email":"alice@example.com","isEmailConfirmed":false}}`, w.Body.String())
	})

	t.Run("deleted account", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/manage/info", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "gone", "x@example.com", "jti"))
		w := httptest.NewRecorder()

		handler.ManageInfo(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ManageInfo(w, httptest.NewRequest(http.MethodGet, "/manage/info", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_Hello(t *testing.T) {
	handler := NewHTTPHandler(NewService(new(mockRepo)))

	r := httptest.NewRequest(http.MethodGet, "/hello", nil)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), "u1", "alice@example.com", "jti"))
	w := httptest.NewRecorder()

	handler.Hello(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
