package ports

import (
	"context"
)

// ELNClient creates entries in the electronic lab notebook.
type ELNClient interface {
	// CreateEntry creates a notebook entry and returns its id.
	CreateEntry(ctx context.Context, entry ELNEntry) (string, error)
}

// ELNEntry describes the acquisition a notebook entry is created for.
type ELNEntry struct {
	Filename   string
	User       string
	Microscope string
	Metadata   map[string]any
}
