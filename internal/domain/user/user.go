// Package user provides the user domain model and account operations.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Phicks-debug/daisii/internal/domain/auth"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

// User models a registered account. Identity is immutable; Disabled is
// mutated only by an administrative path outside this service.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository defines storage operations for users. FindByEmail returns
// (nil, nil) when no account exists.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Registration carries the fields of a registration request.
type Registration struct {
	Email          string
	Username       string
	Password       string
	VerifyPassword string
}

// Service registers accounts and authenticates credentials.
type Service struct {
	repo Repository
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates and persists a new account. Validation failures
// perform no storage write.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	if reg.Email == "" || reg.Username == "" || reg.Password == "" || reg.VerifyPassword == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "email, username, password and verify_password are required", nil)
	}
	if reg.Password != reg.VerifyPassword {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "passwords do not match", nil)
	}

	existing, err := s.repo.FindByEmail(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "email already registered", nil)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "password hashing failed", err)
	}

	account := &User{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		Username:     reg.Username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate resolves an email/password pair to an account. Unknown
// email, wrong password and a disabled account all yield the same
// Unauthorized outcome.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	unauthorized := func() error {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized, "invalid credentials", nil)
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Disabled {
		return nil, unauthorized()
	}

	if err := auth.VerifyPassword(password, account.PasswordHash); err != nil {
		if err == auth.ErrInvalidCredentials {
			return nil, unauthorized()
		}
		// malformed stored hash is a configuration fault
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "stored credential unusable", err)
	}

	return account, nil
}
