package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (title, author, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query,
		b.Title, b.Author, b.Description, b.CreatedBy, b.CreatedAt,
	).Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return nil
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, owner string) ([]Book, error) {
	const query = `
		SELECT id, title, author, description, created_by, created_at
		FROM books
		WHERE created_by = $1
		ORDER BY id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	const query = `
		SELECT id, title, author, description, created_by, created_at
		FROM books
		WHERE id = $1`

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.CreatedBy, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, owner string, d Draft) error {
	const query = `
		UPDATE books
		SET title = $3, author = $4, description = $5
		WHERE id = $1 AND created_by = $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, owner, d.Title, d.Author, d.Description)
	if err != nil {
		return fmt.Errorf("update book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64, owner string) error {
	const query = `DELETE FROM books WHERE id = $1 AND created_by = $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, owner)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
