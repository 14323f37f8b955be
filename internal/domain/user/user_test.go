package user

import (
	"context"
	"testing"

	"github.com/Phicks-debug/daisii/internal/domain/auth"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

type fakeRepo struct {
	byEmail map[string]*User
	creates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*User{}}
}

func (f *fakeRepo) Create(_ context.Context, user *User) error {
	f.creates++
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	return f.byEmail[email], nil
}

func validRegistration() Registration {
	return Registration{
		Email:          "alice@example.com",
		Username:       "alice",
		Password:       "s3cret",
		VerifyPassword: "s3cret",
	}
}

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	account, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if account.PasswordHash == "s3cret" {
		t.Fatal("password must be stored hashed")
	}
	if err := auth.VerifyPassword("s3cret", account.PasswordHash); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 create, got %d", repo.creates)
	}
}

func TestRegisterValidationFailuresPerformNoWrite(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{"missing email", func(r *Registration) { r.Email = "" }},
		{"missing username", func(r *Registration) { r.Username = "" }},
		{"missing password", func(r *Registration) { r.Password = "" }},
		{"missing verify password", func(r *Registration) { r.VerifyPassword = "" }},
		{"password mismatch", func(r *Registration) { r.VerifyPassword = "other" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo)

			reg := validRegistration()
			tt.mutate(&reg)

			_, err := svc.Register(context.Background(), reg)
			if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.creates != 0 {
				t.Fatalf("validation failure must not write, got %d creates", repo.creates)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Register(context.Background(), validRegistration())
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error on duplicate email, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("duplicate must not write, got %d creates", repo.creates)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.byEmail["alice@example.com"].Disabled = false

	disabled := validRegistration()
	disabled.Email = "bob@example.com"
	if _, err := svc.Register(context.Background(), disabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.byEmail["bob@example.com"].Disabled = true

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "s3cret"},
		{"wrong password", "alice@example.com", "wrong"},
		{"disabled account", "bob@example.com", "s3cret"},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			messages = append(messages, err.Error())
		})
	}

	// the three failures must be indistinguishable to a caller
	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Fatalf("failure outcomes differ: %q vs %q", messages[0], messages[i])
		}
	}
}
