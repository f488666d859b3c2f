package common

import (
	"errors"
	"fmt"
)

var ErrUniqueViolation = errors.New("unique constraint violation")

// UniqueViolation tags a driver error so callers can match it with
// errors.Is(err, ErrUniqueViolation) without importing the driver.
func UniqueViolation(err error) error {
	return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
}

func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}
