package domain

import (
	"errors"
	"testing"
)

func TestCheckDimensions(t *testing.T) {
	tests := []struct {
		name    string
		vec     []float32
		dims    int
		wantErr bool
	}{
		{"match", []float32{0.1, 0.2, 0.3}, 3, false},
		{"shorter", []float32{0.1}, 3, true},
		{"longer", []float32{0.1, 0.2, 0.3, 0.4}, 3, true},
		{"check disabled", []float32{0.1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDimensions(tt.vec, tt.dims)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckDimensions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrVectorDimMismatch) {
				t.Errorf("expected ErrVectorDimMismatch, got %v", err)
			}
		})
	}
}

func TestEmptyInputError_Unwrap(t *testing.T) {
	err := error(&EmptyInputError{Field: "text"})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected errors.Is ErrEmptyInput, got %v", err)
	}
	if err.Error() != "empty input: text is blank" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	err := NewValidationError("title", "is required")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected errors.Is ErrInvalidInput, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Errorf("expected ValidationError for title, got %v", err)
	}
}
