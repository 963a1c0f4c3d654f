package auth

import (
	"context"
	"errors"
	"time"

	"elibrary/internal/platform/crypto"
	"elibrary/internal/session"
	"elibrary/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// UserStore is the slice of the user service that authentication needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

// SessionStore is the slice of the session service that authentication needs.
type SessionStore interface {
	Create(ctx context.Context, s *session.Session) error
	GetByTokenHash(ctx context.Context, hash string) (session.Session, error)
	Rotate(ctx context.Context, oldHash string, next *session.Session) error
	DeleteByTokenHash(ctx context.Context, hash string) error
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

type TokenConfig struct {
	Secret        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RememberMeTTL time.Duration
}

func (c TokenConfig) refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return c.RememberMeTTL
	}
	return c.RefreshTTL
}

// Tokens is the result of a successful login or refresh.
type Tokens struct {
	Email        string
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	UserAgent  string
	IPAddress  string
}

type Service struct {
	cfg      TokenConfig
	users    UserStore
	sessions SessionStore
}

func NewService(cfg TokenConfig, users UserStore, sessions SessionStore) *Service {
	return &Service{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
	}
}

// Login checks the password and opens a new refresh session.
func (s *Service) Login(ctx context.Context, in LoginInput) (Tokens, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, in.Password) {
		return Tokens{}, ErrUnauthorized
	}

	refreshToken, refreshHash, err := crypto.NewRefreshToken()
	if err != nil {
		return Tokens{}, err
	}
	refreshTTL := s.cfg.refreshTTL(in.RememberMe)

	sess := &session.Session{
		UserID:           u.ID,
		RefreshTokenHash: refreshHash,
		UserAgent:        in.UserAgent,
		IPAddress:        in.IPAddress,
		RememberMe:       in.RememberMe,
		ExpiresAt:        time.Now().Add(refreshTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return Tokens{}, err
	}

	return s.issue(u, refreshToken, refreshTTL)
}

// Refresh exchanges a refresh token for a new token pair. The presented
// refresh token is consumed and cannot be used again.
func (s *Service) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, ErrUnauthorized
	}

	oldHash := crypto.HashToken(refreshToken)
	current, err := s.sessions.GetByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}

	u, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}

	newRefresh, newHash, err := crypto.NewRefreshToken()
	if err != nil {
		return Tokens{}, err
	}
	refreshTTL := s.cfg.refreshTTL(current.RememberMe)

	next := &session.Session{
		UserID:           current.UserID,
		RefreshTokenHash: newHash,
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		RememberMe:       current.RememberMe,
		ExpiresAt:        time.Now().Add(refreshTTL),
	}
	if err := s.sessions.Rotate(ctx, oldHash, next); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}

	return s.issue(u, newRefresh, refreshTTL)
}

// Logout revokes the access token and, when given, ends the refresh session.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := crypto.ParseToken(s.cfg.Secret, accessToken)
	if err != nil {
		return ErrUnauthorized
	}

	expiresAt := time.Now().Add(s.cfg.AccessTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.sessions.Revoke(ctx, claims.ID, claims.Sub, expiresAt); err != nil {
		return err
	}

	if refreshToken != "" {
		return s.sessions.DeleteByTokenHash(ctx, crypto.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) issue(u user.User, refreshToken string, refreshTTL time.Duration) (Tokens, error) {
	accessToken, _, err := crypto.GenerateToken(s.cfg.Secret, u.ID, u.Email, s.cfg.AccessTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		Email:        u.Email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    s.cfg.AccessTTL,
		RefreshTTL:   refreshTTL,
	}, nil
}
