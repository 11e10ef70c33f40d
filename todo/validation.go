package todo

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrTodoNotFound is returned when a todo with the given ID doesn't exist
	// in the user's list.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrUserNotFound is returned when no user has the given ID or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when inserting a user whose email is taken.
	ErrUserExists = errors.New("a user already exists with this email")

	// ErrInvalidLogin is returned when an email and password don't match.
	ErrInvalidLogin = errors.New("invalid email or password")

	// ErrEmailInvalid is returned when an email address is malformed.
	ErrEmailInvalid = errors.New("email is invalid")

	// ErrPasswordRequired is returned when a password is empty.
	ErrPasswordRequired = errors.New("password is required")

	// ErrPasswordTooShort is returned when a password is shorter than MinPasswordLength.
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email looks like an address.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks that password is present and long enough.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
