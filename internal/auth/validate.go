package auth

import (
	"regexp"
)

// ValidationError is malformed or missing input; the HTTP layer maps it to
// a 400 with the message intact.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

func validateRegistration(in RegisterInput) error {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return &ValidationError{Message: "username, email and password are required"}
	}
	if !emailPattern.MatchString(in.Email) {
		return &ValidationError{Message: "please provide a valid email address"}
	}
	if !usernamePattern.MatchString(in.Username) {
		return &ValidationError{Message: "username must be 3-20 characters long and contain only letters, numbers, and underscores"}
	}
	if len(in.Password) < 6 {
		return &ValidationError{Message: "password must be at least 6 characters long"}
	}
	if in.ConfirmPassword != "" && in.Password != in.ConfirmPassword {
		return &ValidationError{Message: "passwords do not match"}
	}
	return nil
}
