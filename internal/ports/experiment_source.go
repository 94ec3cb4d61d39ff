package ports

import (
	"context"

	"github.com/emiliopalmerini/rtgscope/internal/domain"
)

// ExperimentSource fetches the experiments listing from the experiments API.
type ExperimentSource interface {
	// List performs one authenticated read of the full listing.
	List(ctx context.Context) ([]domain.ExperimentRecord, error)
}
