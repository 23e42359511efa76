package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooShort is returned by ValidatePassword for weak inputs.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// HashPassword hashes the password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword validates a password against a stored bcrypt hash.
func CheckPassword(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// ValidatePassword applies the minimum password policy.
func ValidatePassword(password string) error {
	if len(strings.TrimSpace(password)) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}
