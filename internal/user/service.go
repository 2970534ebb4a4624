package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *User) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns a non-nil error when password does not match hashed.
	Compare(hashed, password string) error
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// Authenticate resolves the user owning email and checks the password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(u.Password, password); err != nil {
		slog.Debug("authentication failed", "user_id", u.ID, "error", err)
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := strings.TrimSpace(params.Email)

	if err := s.ValidateEmailUnique(ctx, email); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     strings.TrimSpace(params.Name),
		Email:    email,
		Password: hashed,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) ValidateEmailUnique(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}

	if exists {
		return ErrEmailTaken
	}

	return nil
}

// FindByID returns ErrIDNotFound when no user has id.
func (s *Service) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
