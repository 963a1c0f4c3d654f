package book

import (
	"errors"
	"strings"
	"time"

	"elibrary/internal/platform/validate"
)

var (
	// ErrNotFound is returned when a book does not exist or is not owned by
	// the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("book not found")
	// ErrUnauthorized is returned when an operation is attempted without a
	// caller identity.
	ErrUnauthorized = errors.New("caller identity required")
)

// Book is a catalog record owned by the identity that created it.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	CreatedBy   *string   `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OwnedBy reports whether caller is the recorded creator of b.
func (b Book) OwnedBy(caller string) bool {
	return b.CreatedBy != nil && *b.CreatedBy == caller
}

// Draft carries the client-supplied fields of a book, used for both create
// and full-replace update.
type Draft struct {
	Title       string `json:"title" validate:"notblank"`
	Author      string `json:"author" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
}

// Validate returns a *ValidationError listing every blank field, or nil.
func (d Draft) Validate() error {
	if fields := validate.Struct(d); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidationError describes a rejected draft field by field.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid book: " + strings.Join(msgs, "; ")
}
