package repository

import (
	"context"
	"errors"

	"userdir/internal/domain"
)

var (
	// ErrNotFound is returned when no record exists for the given username.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when a create or rename would collide
	// with an existing username.
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository defines persistence operations for User records. Two
// implementations exist: a sqlite table and a flat JSON document; both key
// every lookup and mutation on the unique username.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update replaces the mutable fields of the record currently keyed by
	// oldUsername. A differing user.Username renames the record.
	Update(ctx context.Context, oldUsername string, user *domain.User) error
	Delete(ctx context.Context, username string) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}
