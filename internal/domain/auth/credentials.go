// Package auth provides password hashing and signed session tokens.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the uniform mismatch result. Callers must not
// be able to tell a wrong password apart from an unknown user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword derives a one-way salted hash from the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a candidate password against a stored hash in
// constant time. A mismatch yields ErrInvalidCredentials; any other
// error means the stored hash is malformed, which is a configuration
// fault, not a bad login.
func VerifyPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("malformed stored password hash: %w", err)
}
