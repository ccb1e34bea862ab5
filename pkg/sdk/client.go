package ideaboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// Client calls the ideaboard HTTP API. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ideaboard: invalid base URL %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    hc,
		obs:     obs,
	}, nil
}

// CreateIdea stores a new idea.
func (c *Client) CreateIdea(ctx context.Context, in IdeaInput) (idea Idea, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create_idea", start, err) }()

	err = c.do(ctx, http.MethodPost, "/ideas", in, &idea)
	return idea, err
}

// GetIdea fetches one idea.
func (c *Client) GetIdea(ctx context.Context, id string) (idea Idea, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_idea", start, err) }()

	err = c.do(ctx, http.MethodGet, "/ideas/"+url.PathEscape(id), nil, &idea)
	return idea, err
}

// FindSimilar returns ideas similar to q.Text. The server degrades to an empty
// list instead of failing, so errors here are transport or auth problems.
func (c *Client) FindSimilar(ctx context.Context, q SimilarQuery) (matches []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("find_similar", start, err) }()

	var resp struct {
		Matches []Match `json:"matches"`
	}
	if err = c.do(ctx, http.MethodPost, "/ideas/similar", q, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Thread fetches the comment tree of an idea.
func (c *Client) Thread(ctx context.Context, ideaID string) (t Thread, err error) {
	start := time.Now()
	defer func() { c.obs.observe("thread", start, err) }()

	err = c.do(ctx, http.MethodGet, "/ideas/"+url.PathEscape(ideaID)+"/comments", nil, &t)
	return t, err
}

// AddComment posts a comment or a reply under ideaID.
func (c *Client) AddComment(ctx context.Context, ideaID string, in CommentInput) (cm Comment, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_comment", start, err) }()

	err = c.do(ctx, http.MethodPost, "/ideas/"+url.PathEscape(ideaID)+"/comments", in, &cm)
	return cm, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	status, data, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return decodeAPIError(status, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ideaboard: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("ideaboard: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("ideaboard: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// отдаём ctx ошибку как есть, чтобы errors.Is(err, context.Canceled) работал
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, fmt.Errorf("ideaboard: %s %s: %w", method, path, ctxErr)
		}
		return 0, nil, fmt.Errorf("ideaboard: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("ideaboard: read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}
	apiErr.Code = fmt.Sprintf("http_%d", status)
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

