// Package clients talks to services this backend depends on but does not own.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"photoshare/app/metrics"
)

// TagAssociationClient returns tag names related to the given ones.
type TagAssociationClient interface {
	GetAssociations(ctx context.Context, tags []string) ([]string, error)
}

// StatusError is returned when the association service answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("association service returned %d: %s", e.StatusCode, e.Body)
}

// HTTPAssociationClient POSTs a JSON array of tag names and expects a JSON
// array of tag names back.
type HTTPAssociationClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPAssociationClient creates a client for the service at url.
func NewHTTPAssociationClient(url string, timeout time.Duration) *HTTPAssociationClient {
	return &HTTPAssociationClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetAssociations asks the service for tags related to tags. A null body
// is read as no associations.
func (c *HTTPAssociationClient) GetAssociations(ctx context.Context, tags []string) ([]string, error) {
	start := time.Now()
	defer func() { metrics.AssociationDuration.Observe(time.Since(start).Seconds()) }()

	if tags == nil {
		tags = []string{}
	}
	body, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build association request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("association request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	var associations []string
	if err := json.NewDecoder(resp.Body).Decode(&associations); err != nil {
		return nil, fmt.Errorf("failed to decode associations: %w", err)
	}
	return associations, nil
}

// MockAssociationClient always answers with the same tags. It stands in for
// the real service in local runs.
type MockAssociationClient struct {
	Tags []string
}

// NewMockAssociationClient returns a client answering car, sunset and love.
func NewMockAssociationClient() *MockAssociationClient {
	return &MockAssociationClient{Tags: []string{"car", "sunset", "love"}}
}

func (c *MockAssociationClient) GetAssociations(ctx context.Context, tags []string) ([]string, error) {
	out := make([]string, len(c.Tags))
	copy(out, c.Tags)
	return out, nil
}

var (
	_ TagAssociationClient = (*HTTPAssociationClient)(nil)
	_ TagAssociationClient = (*MockAssociationClient)(nil)
)
