package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by operations that require an entity to exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks record-level validation failures.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes why a single record was rejected.
type ValidationError struct {
	Entity string
	Key    string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q: %s %s", e.Entity, e.Key, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Entity, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(entity, key, field, reason string) error {
	return &ValidationError{Entity: entity, Key: key, Field: field, Reason: reason}
}

// NotFoundError wraps ErrNotFound with the kind and key that were looked up.
func NotFoundError(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}
