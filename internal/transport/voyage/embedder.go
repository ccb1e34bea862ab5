// Package voyage is an embedding provider for the Voyage AI embeddings API.
package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
)

// ProviderName labels metrics and logs for this adapter.
const ProviderName = "voyage"

// Defaults.
const (
	DefaultBaseURL    = "https://api.voyageai.com/v1"
	DefaultModel      = "voyage-3.5"
	DefaultDimensions = 1024
	DefaultTimeout    = 10 * time.Second
)

// Input types understood by the API.
const (
	InputTypeDocument = "document"
	InputTypeQuery    = "query"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// Config holds Voyage settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	// InputType is sent with every request; ideas and queries share one corpus so
	// "document" is the default.
	InputType string
	Timeout   time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Embedder calls POST {base}/embeddings.
type Embedder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	inputType  string
	logger     *zap.Logger
}

type embedRequest struct {
	Input           []string `json:"input"`
	Model           string   `json:"model"`
	InputType       string   `json:"input_type,omitempty"`
	OutputDimension int      `json:"output_dimension,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewEmbedder creates a Voyage embedding provider.
func NewEmbedder(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.InputType == "" {
		cfg.InputType = InputTypeDocument
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		inputType:  cfg.InputType,
		logger:     logger,
	}
}

// Name returns the provider name.
func (e *Embedder) Name() string { return ProviderName }

// Model returns the configured model.
func (e *Embedder) Model() string { return e.model }

// Dimensions returns the requested vector size.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	resp, err := e.do(ctx, text)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, errorType(err)).Inc()
		return domain.EmbeddingResult{}, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderName, e.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		// Voyage reports total tokens only.
		tokens := float64(resp.Usage.TotalTokens)
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderName, e.model, "prompt").Add(tokens)
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderName, e.model, "total").Add(tokens)
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.TotalTokens,
		TotalTokens:  resp.Usage.TotalTokens,
		Provider:     ProviderName,
	}, nil
}

// HealthCheck embeds a one-word probe. The API has no free listing endpoint.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.do(ctx, "ping"); err != nil {
		return fmt.Errorf("voyage probe: %w", err)
	}
	return nil
}

func (e *Embedder) do(ctx context.Context, text string) (*embedResponse, error) {
	body, err := json.Marshal(embedRequest{
		Input:           []string{text},
		Model:           e.model,
		InputType:       e.inputType,
		OutputDimension: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}
	return &out, nil
}

// parseAPIError reads the {"detail": "..."} body Voyage returns on failure.
func parseAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed struct {
		Detail string `json:"detail"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &parsed) == nil && parsed.Detail != "" {
		msg = parsed.Detail
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// APIError is a non-200 answer from the API. It unwraps to domain.ErrEmbeddingProviderError.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("voyage API error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return domain.ErrEmbeddingProviderError }

func errorType(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
