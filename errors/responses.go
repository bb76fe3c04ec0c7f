package errors

import (
	"errors"
)

// As is a wrapper around errors.As for better error type assertion
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a wrapper around errors.Is for sentinel comparison
func Is(err, target error) bool {
	return errors.Is(err, target)
}
