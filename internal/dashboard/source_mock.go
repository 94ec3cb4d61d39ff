package dashboard

import (
	"context"
	"sync/atomic"

	"github.com/emiliopalmerini/rtgscope/internal/domain"
)

// MockSource is a mock implementation of ports.ExperimentSource for testing.
type MockSource struct {
	ListFunc func(ctx context.Context) ([]domain.ExperimentRecord, error)

	calls atomic.Int64
}

func (m *MockSource) List(ctx context.Context) ([]domain.ExperimentRecord, error) {
	m.calls.Add(1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.ExperimentRecord{}, nil
}

// Calls reports how many times List was invoked.
func (m *MockSource) Calls() int64 {
	return m.calls.Load()
}
