package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"userdir/internal/domain"
	"userdir/internal/notify"
	"userdir/internal/repository"
)

// UserInput carries the submitted form fields for a create or edit. Image is
// the filename resolved by the upload receiver; empty means no file was
// submitted.
type UserInput struct {
	Username   string
	Email      string
	Telephone  string
	FirstName  string
	LastName   string
	BirthDate  string
	Profession string
	Image      string
}

// UserService sequences the directory mutations: merge the submitted fields
// with the resolved upload, write to the store, then fire the notifier.
type UserService interface {
	Create(ctx context.Context, input UserInput) (*domain.User, error)
	Search(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, previousUsername string, input UserInput) (*domain.User, error)
	Delete(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	notifier notify.Notifier
	logger   *logrus.Logger
}

func NewUserService(users repository.UserRepository, notifier notify.Notifier, logger *logrus.Logger) UserService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &userService{
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *userService) Create(ctx context.Context, input UserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	user := &domain.User{
		Username:   username,
		Email:      input.Email,
		Telephone:  input.Telephone,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		BirthDate:  input.BirthDate,
		Profession: input.Profession,
		Image:      input.Image,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.notify("Account created", fmt.Sprintf("%s has been added to the directory", user.Username))
	return user, nil
}

func (s *userService) Search(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("search: %w", repository.ErrNotFound)
	}
	return s.users.GetByUsername(ctx, username)
}

func (s *userService) Update(ctx context.Context, previousUsername string, input UserInput) (*domain.User, error) {
	previousUsername = strings.TrimSpace(previousUsername)
	if previousUsername == "" {
		return nil, errors.New("previous username is required")
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	existing, err := s.users.GetByUsername(ctx, previousUsername)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:   username,
		Email:      input.Email,
		Telephone:  input.Telephone,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		BirthDate:  input.BirthDate,
		Profession: input.Profession,
		Image:      input.Image,
	}
	// An edit without a new upload keeps the stored image.
	if user.Image == "" {
		user.Image = existing.Image
	}

	if err := s.users.Update(ctx, previousUsername, user); err != nil {
		return nil, err
	}

	s.notify("Account updated", fmt.Sprintf("%s has been updated", user.Username))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("delete: %w", repository.ErrNotFound)
	}

	user, err := s.users.Delete(ctx, username)
	if err != nil {
		return nil, err
	}

	s.notify("Account deleted", fmt.Sprintf("%s has been removed from the directory", user.Username))
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAll(ctx)
}

// notify fires the configured sink. A failed delivery is logged and
// otherwise ignored so it never changes the outcome of a mutation.
func (s *userService) notify(title, message string) {
	if err := s.notifier.Notify(title, message); err != nil && s.logger != nil {
		s.logger.WithField("title", title).Warnf("notification failed: %v", err)
	}
}
