package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrProvider      = errors.New("payment provider error")
	ErrStore         = errors.New("store error")
	ErrAggregation   = errors.New("aggregation error")
)

// errorf wraps kind with a formatted message so errors.Is(err, kind) holds.
func errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// wrap attaches kind to an underlying error, keeping both in the chain.
func wrap(kind error, op string, err error) error {
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}
