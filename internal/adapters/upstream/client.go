package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/domain"
)

// ExperimentsPath is the listing endpoint on the experiments API.
const ExperimentsPath = "/experiments"

// Client reads the experiments listing from the experiments API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the API at cfg.URL authenticating with cfg.Token.
func NewClient(cfg config.Upstream, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List performs GET /experiments with the configured bearer token.
func (c *Client) List(ctx context.Context) ([]domain.ExperimentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ExperimentsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var records []domain.ExperimentRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if records == nil {
		records = []domain.ExperimentRecord{}
	}
	return records, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}
