package ideaboard

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/ideaboard/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrAlreadyExists          = domain.ErrAlreadyExists
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrInvalidParent          = domain.ErrInvalidParent
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingUnconfigured  = domain.ErrEmbeddingUnconfigured

	// ErrUnauthorized signals a missing or rejected API key.
	ErrUnauthorized = errors.New("unauthorized")
)

// codeSentinels maps API error codes onto sentinels.
var codeSentinels = map[string]error{
	"not_found":                ErrNotFound,
	"already_exists":           ErrAlreadyExists,
	"validation_failed":        ErrInvalidInput,
	"bad_request":              ErrInvalidInput,
	"vector_dim_mismatch":      ErrInvalidInput,
	"invalid_parent":           ErrInvalidParent,
	"rate_limited":             ErrRateLimited,
	"embedding_provider_error": ErrEmbeddingProviderError,
	"embedding_unconfigured":   ErrEmbeddingUnconfigured,
	"unauthorized":             ErrUnauthorized,
}

// APIError is a non-2xx API response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ideaboard: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap lets errors.Is match the sentinel for Code.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
