package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound the requested product, price, merchant or address does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyConfirmed the user already confirmed this price.
	ErrAlreadyConfirmed = errors.New("price already confirmed by user")
	// ErrNotConfirmed the user has not confirmed this price.
	ErrNotConfirmed = errors.New("price not confirmed by user")
	// ErrStorage the backing store failed.
	ErrStorage = errors.New("storage failure")
)

// ValidationError input rejected before any write.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

func invalid(reasons ...string) error {
	return &ValidationError{Reasons: reasons}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// storageErr wraps err so that errors.Is(err, ErrStorage) holds.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
