package eln

import (
	"context"

	"github.com/emiliopalmerini/rtgscope/internal/ports"
)

// NoOpClient is used when no ELN is configured; entries get no ELN id.
type NoOpClient struct{}

func NewNoOpClient() *NoOpClient {
	return &NoOpClient{}
}

func (c *NoOpClient) CreateEntry(ctx context.Context, entry ports.ELNEntry) (string, error) {
	return "", nil
}
