package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt with DefaultCost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

// ValidatePassword checks a candidate against the account password policy
// and returns every violated rule, not just the first. Shared by
// registration and the password-change flow.
func ValidatePassword(pw string, minLength int) []string {
	var errs []string
	if len(pw) < minLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minLength))
	}
	var upper, lower, digit, space bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r):
			space = true
		}
	}
	if !upper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !lower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !digit {
		errs = append(errs, "password must contain a digit")
	}
	if space {
		errs = append(errs, "password must not contain whitespace")
	}
	return errs
}
