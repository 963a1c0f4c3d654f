package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	// GetByTokenHash returns the unexpired session for a refresh token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	ListByUserID(ctx context.Context, userID string) ([]Session, error)
	// Rotate atomically consumes the unexpired session identified by oldHash
	// and stores next in its place. It returns ErrNotFound when the old
	// session is gone, so a refresh token can be redeemed only once.
	Rotate(ctx context.Context, oldHash string, next *Session) error
	DeleteForUser(ctx context.Context, sessionID, userID string) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// BlacklistRepository stores revoked access-token ids until they expire.
type BlacklistRepository interface {
	Add(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
