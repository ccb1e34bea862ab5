package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput signals a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyInput signals blank text passed to an embedder.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidParent signals a reply whose parent is missing or belongs to another idea.
	ErrInvalidParent = errors.New("invalid parent comment")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingUnconfigured signals that no embedding provider has credentials.
	ErrEmbeddingUnconfigured = errors.New("embedding provider not configured")
)

// EmptyInputError is returned by embed for blank text. Field names the offending input.
type EmptyInputError struct {
	Field string
}

func (e *EmptyInputError) Error() string {
	if e.Field == "" {
		return ErrEmptyInput.Error()
	}
	return fmt.Sprintf("%s: %s is blank", ErrEmptyInput.Error(), e.Field)
}

func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }

// ValidationError wraps ErrInvalidInput with the failing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
