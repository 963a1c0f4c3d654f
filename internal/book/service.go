package book

import (
	"context"
	"time"
)

// Service enforces per-caller ownership of books.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new book owned by caller.
func (s *Service) Create(ctx context.Context, d Draft, caller string) (Book, error) {
	if caller == "" {
		return Book{}, ErrUnauthorized
	}
	if err := d.Validate(); err != nil {
		return Book{}, err
	}

	owner := caller
	b := Book{
		Title:       d.Title,
		Author:      d.Author,
		Description: d.Description,
		CreatedBy:   &owner,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// ListOwned returns every book created by caller, never nil.
func (s *Service) ListOwned(ctx context.Context, caller string) ([]Book, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	books, err := s.repo.ListByOwner(ctx, caller)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// GetOwned returns the book id if caller owns it. Books owned by someone else
// are reported as ErrNotFound.
func (s *Service) GetOwned(ctx context.Context, id int64, caller string) (Book, error) {
	if caller == "" {
		return Book{}, ErrUnauthorized
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if !b.OwnedBy(caller) {
		return Book{}, ErrNotFound
	}
	return b, nil
}

// UpdateOwned replaces title, author and description of a book caller owns.
func (s *Service) UpdateOwned(ctx context.Context, id int64, d Draft, caller string) error {
	if caller == "" {
		return ErrUnauthorized
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := s.GetOwned(ctx, id, caller); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, caller, d)
}

// DeleteOwned permanently removes a book caller owns.
func (s *Service) DeleteOwned(ctx context.Context, id int64, caller string) error {
	if _, err := s.GetOwned(ctx, id, caller); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, caller)
}
