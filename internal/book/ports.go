package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	// Create persists b and fills in its generated ID.
	Create(ctx context.Context, b *Book) error
	// ListByOwner returns the books created by owner ordered by id.
	ListByOwner(ctx context.Context, owner string) ([]Book, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	// Update replaces the mutable fields of the book id owned by owner.
	// It returns ErrNotFound when no such row exists.
	Update(ctx context.Context, id int64, owner string, d Draft) error
	// Delete removes the book id owned by owner. It returns ErrNotFound when
	// no such row exists.
	Delete(ctx context.Context, id int64, owner string) error
}
