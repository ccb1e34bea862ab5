package ideaboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Health fetches GET /health. A degraded server answers 503 with a report,
// which is returned without error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	status, data, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	if status != http.StatusOK && status != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeAPIError(status, data)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return HealthStatus{}, fmt.Errorf("ideaboard: decode health: %w", err)
	}
	return h, nil
}
