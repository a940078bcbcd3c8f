package identity

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// ValidatePassword returns one message per violated rule, or nil.
func ValidatePassword(password string) []string {
	var upper, lower, digit, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	var errs []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("Passwords must be at least %d characters.", MinPasswordLength))
	}
	if !other {
		errs = append(errs, "Passwords must have at least one non alphanumeric character.")
	}
	if !digit {
		errs = append(errs, "Passwords must have at least one digit ('0'-'9').")
	}
	if !lower {
		errs = append(errs, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !upper {
		errs = append(errs, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return errs
}
