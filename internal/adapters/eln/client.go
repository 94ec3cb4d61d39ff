package eln

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/ports"
)

// Client creates entries through the ELN HTTP API.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewClient creates a new ELN client.
func NewClient(cfg config.ELN) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ELN client is disabled: RTGSCOPE_ELN_URL not configured")
	}

	return &Client{
		url:   cfg.URL,
		token: cfg.Token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type createEntryRequest struct {
	Title      string         `json:"title"`
	User       string         `json:"user"`
	Instrument string         `json:"instrument"`
	Metadata   map[string]any `json:"metadata"`
}

type createEntryResponse struct {
	ID any `json:"id"`
}

// CreateEntry posts a new notebook entry and returns its id.
func (c *Client) CreateEntry(ctx context.Context, entry ports.ELNEntry) (string, error) {
	body, err := json.Marshal(createEntryRequest{
		Title:      "Microscopy: " + entry.Filename,
		User:       entry.User,
		Instrument: entry.Microscope,
		Metadata:   entry.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("encoding entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var out createEntryResponse
	if err := dec.Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	switch id := out.ID.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case nil:
		return "", fmt.Errorf("response has no id")
	default:
		return fmt.Sprint(id), nil
	}
}
