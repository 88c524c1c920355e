// Package passwords hashes and checks admin passwords with bcrypt.
package passwords

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new hashes.
const Cost = 12

// Length limits. bcrypt ignores everything past 72 bytes, so longer
// passwords are rejected rather than silently truncated.
const (
	MinLength = 8
	MaxBytes  = 72
)

var (
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)
	ErrTooLong  = fmt.Errorf("password must be at most %d bytes", MaxBytes)
	ErrMismatch = errors.New("password does not match")
)

// Validate checks the length rules.
func Validate(password string) error {
	if len([]rune(password)) < MinLength {
		return ErrTooShort
	}
	if len(password) > MaxBytes {
		return ErrTooLong
	}
	return nil
}

// Hash validates password and returns its bcrypt hash.
func Hash(password string) (string, error) {
	if err := Validate(password); err != nil {
		return "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Check compares a password with a stored hash. It returns ErrMismatch for
// a wrong password and another error for a malformed hash.
func Check(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
