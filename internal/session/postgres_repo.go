package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, user_id, refresh_token_hash, user_agent, ip_address, remember_me, expires_at, created_at, last_used_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&s.UserAgent,
		&s.IPAddress,
		&s.RememberMe,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.LastUsedAt,
	)
	return s, err
}

const insertSession = `
	INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, remember_me, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, last_used_at
	`

func insert(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return q.QueryRow(ctx, insertSession,
		s.ID,
		s.UserID,
		s.RefreshTokenHash,
		s.UserAgent,
		s.IPAddress,
		s.RememberMe,
		s.ExpiresAt,
	).Scan(&s.CreatedAt, &s.LastUsedAt)
}

func (r *PostgresRepo) Create(ctx context.Context, s *Session) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := insert(timeoutCtx, r.db, s); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	query := `SELECT ` + sessionColumns + `
	FROM sessions
	WHERE refresh_token_hash = $1 AND expires_at > now()
	LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	s, err := scanSession(r.db.QueryRow(timeoutCtx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *PostgresRepo) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	query := `SELECT ` + sessionColumns + `
	FROM sessions
	WHERE user_id = $1 AND expires_at > now()
	ORDER BY created_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PostgresRepo) Rotate(ctx context.Context, oldHash string, next *Session) error {
	const consume = `
	DELETE FROM sessions
	WHERE refresh_token_hash = $1 AND user_id = $2 AND expires_at > now()`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return pgx.BeginFunc(timeoutCtx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(timeoutCtx, consume, oldHash, next.UserID)
		if err != nil {
			return fmt.Errorf("consume session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err := insert(timeoutCtx, tx, next); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepo) DeleteForUser(ctx context.Context, sessionID, userID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return ErrNotFound
	}

	const query = `DELETE FROM sessions WHERE id = $1 AND user_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	const query = `DELETE FROM sessions WHERE refresh_token_hash = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, query, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) CleanupExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < now()`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

type BlacklistPostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewBlacklistPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *BlacklistPostgresRepo {
	return &BlacklistPostgresRepo{db: db, timeout: timeout}
}

func (r *BlacklistPostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *BlacklistPostgresRepo) Add(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	const query = `
	INSERT INTO token_blacklist (jti, user_id, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (jti) DO NOTHING
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, query, jti, userID, expiresAt); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (r *BlacklistPostgresRepo) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	const query = `
	SELECT EXISTS(
		SELECT 1 FROM token_blacklist
		WHERE jti = $1 AND expires_at > now()
	)
	`
	var exists bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, jti).Scan(&exists); err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return exists, nil
}

func (r *BlacklistPostgresRepo) CleanupExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM token_blacklist WHERE expires_at < now()`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup blacklist: %w", err)
	}
	return result.RowsAffected(), nil
}
