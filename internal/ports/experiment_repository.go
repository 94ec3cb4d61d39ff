package ports

import (
	"context"

	"github.com/emiliopalmerini/rtgscope/internal/domain"
)

type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	GetByID(ctx context.Context, id string) (*domain.Experiment, error)
	List(ctx context.Context) ([]*domain.Experiment, error)
	Delete(ctx context.Context, id string) error
}
