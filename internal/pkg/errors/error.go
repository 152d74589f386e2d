package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInternal     = errors.New("internal server error")
	ErrBadRequest   = errors.New("bad request")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Pricing and allocation errors
var (
	ErrZeroCapacity             = errors.New("subscription has no remaining capacity")
	ErrBelowMinimumPayment      = errors.New("amount is below the minimum payment")
	ErrExceedsRemainingCapacity = errors.New("requested hours exceed remaining capacity")
	ErrMissingSelection         = errors.New("customer or service selection is missing")
	ErrConcurrentOverallocation = errors.New("subscription capacity changed concurrently")
)

// Token codec errors
var (
	ErrMalformedToken           = errors.New("malformed token")
	ErrUnknownCustomerOrService = errors.New("token references an unknown customer or service")
	ErrFieldOverflow            = errors.New("value does not fit the token field width")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
