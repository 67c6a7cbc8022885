package service

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// normalizeEmail lower-cases and validates an address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", &ValidationError{Field: "email", Reason: "is not a valid email address"}
	}
	return email, nil
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", &ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
