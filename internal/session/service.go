package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Service struct {
	repo          Repository
	blacklistRepo BlacklistRepository
}

func NewService(repo Repository, blacklistRepo BlacklistRepository) *Service {
	return &Service{
		repo:          repo,
		blacklistRepo: blacklistRepo,
	}
}

func (s *Service) Create(ctx context.Context, session *Session) error {
	return s.repo.Create(ctx, session)
}

func (s *Service) GetByTokenHash(ctx context.Context, hash string) (Session, error) {
	return s.repo.GetByTokenHash(ctx, hash)
}

func (s *Service) Rotate(ctx context.Context, oldHash string, next *Session) error {
	return s.repo.Rotate(ctx, oldHash, next)
}

func (s *Service) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	sessions, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

// DeleteForUser removes a session owned by userID. Sessions of other users
// are reported as ErrNotFound.
func (s *Service) DeleteForUser(ctx context.Context, sessionID, userID string) error {
	return s.repo.DeleteForUser(ctx, sessionID, userID)
}

func (s *Service) DeleteByTokenHash(ctx context.Context, hash string) error {
	return s.repo.DeleteByTokenHash(ctx, hash)
}

// Revoke blacklists an access token id until expiresAt. Tokens that have
// already expired are ignored.
func (s *Service) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if jti == "" || !expiresAt.After(time.Now()) {
		return nil
	}
	return s.blacklistRepo.Add(ctx, jti, userID, expiresAt)
}

func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.blacklistRepo.IsBlacklisted(ctx, jti)
}

// Cleanup purges expired sessions and blacklist entries.
func (s *Service) Cleanup(ctx context.Context) error {
	sessions, err := s.repo.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	tokens, err := s.blacklistRepo.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if sessions > 0 || tokens > 0 {
		log.Info().Int64("sessions", sessions).Int64("revoked_tokens", tokens).Msg("expired auth state purged")
	}
	return nil
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Cleanup(ctx); err != nil {
				log.Warn().Err(err).Msg("session cleanup failed")
			}
		}
	}
}
