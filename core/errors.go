package core

import (
	"errors"
	"regexp"
)

var (
	// ErrNotFound is a sentinel error for "not found" cases
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed input such as out-of-range coordinates
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated marks a missing or invalid credential
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden marks a valid identity acting outside its role or ownership
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists marks a uniqueness violation, e.g. a registered email
	ErrAlreadyExists = errors.New("already exists")
)

var notFoundRegex = regexp.MustCompile(`(?i)not found`)

// IsNotFoundError checks if an error is a "not found" error.
// Handles both the ErrNotFound sentinel and string-based errors from drivers.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return notFoundRegex.MatchString(err.Error())
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsUnauthenticatedError(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsAlreadyExistsError(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
