// Package jsonfile persists the whole user collection as a single JSON
// document, rewritten wholesale on every mutation. A mutex serializes
// writers; a crash mid-write can still corrupt the file, which is an
// accepted limitation of this backing.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"userdir/internal/domain"
	"userdir/internal/repository"
)

type document struct {
	Users []record `json:"users"`
}

type record struct {
	ID         int64  `json:"id"`
	Username   string `json:"userName"`
	Email      string `json:"email,omitempty"`
	Telephone  string `json:"telephone,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	BirthDate  string `json:"birthDate,omitempty"`
	Profession string `json:"profession,omitempty"`
	Image      string `json:"image"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type UserRepository struct {
	path string

	mu     sync.Mutex
	users  []record
	nextID int64
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Init loads the document from disk, creating an empty one when the file
// does not exist yet.
func (r *UserRepository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.users = nil
		r.nextID = 1
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
		return r.flush()
	}
	if err != nil {
		return fmt.Errorf("read user store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode user store: %w", err)
	}

	r.users = doc.Users
	r.nextID = 1
	for _, u := range r.users {
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(user.Username) >= 0 {
		return fmt.Errorf("create user %q: %w", user.Username, repository.ErrDuplicateUsername)
	}

	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++

	r.users = append(r.users, toRecord(user))
	if err := r.flush(); err != nil {
		r.users = r.users[:len(r.users)-1]
		return err
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(username)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	user := toDomain(r.users[i])
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, oldUsername string, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(oldUsername)
	if i < 0 {
		return fmt.Errorf("update user %q: %w", oldUsername, repository.ErrNotFound)
	}
	if user.Username != oldUsername && r.indexOf(user.Username) >= 0 {
		return fmt.Errorf("rename user %q to %q: %w", oldUsername, user.Username, repository.ErrDuplicateUsername)
	}

	previous := r.users[i]
	user.ID = previous.ID
	user.CreatedAt = parseTime(previous.CreatedAt)
	user.UpdatedAt = time.Now().UTC()

	r.users[i] = toRecord(user)
	if err := r.flush(); err != nil {
		r.users[i] = previous
		return err
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(username)
	if i < 0 {
		return nil, repository.ErrNotFound
	}

	removed := r.users[i]
	r.users = append(r.users[:i:i], r.users[i+1:]...)
	if err := r.flush(); err != nil {
		r.users = append(r.users[:i], append([]record{removed}, r.users[i:]...)...)
		return nil, err
	}
	user := toDomain(removed)
	return &user, nil
}

// ListAll returns the records in document order, which for this backing is
// insertion order.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]domain.User, len(r.users))
	for i, rec := range r.users {
		users[i] = toDomain(rec)
	}
	return users, nil
}

// flush rewrites the whole document. Callers must hold r.mu.
func (r *UserRepository) flush() error {
	doc := document{Users: r.users}
	if doc.Users == nil {
		doc.Users = []record{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user store: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write user store: %w", err)
	}
	return nil
}

func (r *UserRepository) indexOf(username string) int {
	for i := range r.users {
		if r.users[i].Username == username {
			return i
		}
	}
	return -1
}

func toRecord(user *domain.User) record {
	return record{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Telephone:  user.Telephone,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		BirthDate:  user.BirthDate,
		Profession: user.Profession,
		Image:      user.Image,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toDomain(rec record) domain.User {
	return domain.User{
		ID:         rec.ID,
		Username:   rec.Username,
		Email:      rec.Email,
		Telephone:  rec.Telephone,
		FirstName:  rec.FirstName,
		LastName:   rec.LastName,
		BirthDate:  rec.BirthDate,
		Profession: rec.Profession,
		Image:      rec.Image,
		CreatedAt:  parseTime(rec.CreatedAt),
		UpdatedAt:  parseTime(rec.UpdatedAt),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
