// Package pinecone implements the VectorIndex port against the Pinecone
// data-plane REST API.
package pinecone

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

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

const (
	defaultAPIVersion = "2025-01"
	defaultTimeout    = 30 * time.Second
)

// Config configures the Pinecone client.
type Config struct {
	// APIKey authenticates every request.
	APIKey string

	// IndexHost is the index data-plane host, with or without scheme.
	IndexHost string

	// NamespacePrefix is prepended to every namespace, separated by a colon.
	NamespacePrefix string

	// APIVersion is sent as X-Pinecone-Api-Version.
	APIVersion string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

type client struct {
	cfg     Config
	baseURL string
	http    *http.Client
}

func newClient(cfg Config) (*client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing Pinecone API key", domain.ErrInvalidInput)
	}
	host := strings.TrimRight(strings.TrimSpace(cfg.IndexHost), "/")
	if host == "" {
		return nil, fmt.Errorf("%w: missing Pinecone index host", domain.ErrInvalidInput)
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{cfg: cfg, baseURL: host, http: httpClient}, nil
}

// Wire types.

type wireVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []wireVector `json:"vectors"`
	Namespace string       `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int64 `json:"upsertedCount"`
}

type queryRequest struct {
	Namespace       string         `json:"namespace,omitempty"`
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeValues   bool           `json:"includeValues"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

type updateRequest struct {
	ID          string         `json:"id"`
	SetMetadata map[string]any `json:"setMetadata"`
	Namespace   string         `json:"namespace,omitempty"`
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace,omitempty"`
}

type fetchResponse struct {
	Vectors map[string]wireVector `json:"vectors"`
}

type empty struct{}

func (c *client) upsert(ctx context.Context, req upsertRequest) (*upsertResponse, error) {
	return doJSON[upsertResponse](ctx, c, http.MethodPost, "/vectors/upsert", req)
}

func (c *client) query(ctx context.Context, req queryRequest) (*queryResponse, error) {
	return doJSON[queryResponse](ctx, c, http.MethodPost, "/query", req)
}

func (c *client) update(ctx context.Context, req updateRequest) error {
	_, err := doJSON[empty](ctx, c, http.MethodPost, "/vectors/update", req)
	return err
}

func (c *client) delete(ctx context.Context, req deleteRequest) error {
	_, err := doJSON[empty](ctx, c, http.MethodPost, "/vectors/delete", req)
	return err
}

func (c *client) fetch(ctx context.Context, namespace string, ids []string) (*fetchResponse, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", id)
	}
	if namespace != "" {
		q.Set("namespace", namespace)
	}
	return doJSON[fetchResponse](ctx, c, http.MethodGet, "/vectors/fetch?"+q.Encode(), nil)
}

func doJSON[T any](ctx context.Context, c *client, method, path string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("pinecone encode: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Pinecone-Api-Version", c.cfg.APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: pinecone %s: %v", domain.ErrRemoteUnavailable, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if err := statusError(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinecone decode: %w", err)
	}
	return &out, nil
}

// statusError maps HTTP failures onto domain sentinels.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(body))
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: pinecone http %d: %s", domain.ErrRateLimited, status, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: pinecone http %d: %s", domain.ErrPermissionDenied, status, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: pinecone http %d: %s", domain.ErrNotFound, status, msg)
	case status >= 500:
		return fmt.Errorf("%w: pinecone http %d: %s", domain.ErrRemoteUnavailable, status, msg)
	default:
		return fmt.Errorf("pinecone http %d: %s", status, msg)
	}
}
