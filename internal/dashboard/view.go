// Package dashboard holds the experiments view: a listing fetched once per
// mount and rendered on every request.
package dashboard

import (
	"context"
	"slices"
	"sync"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/otel"
	"github.com/emiliopalmerini/rtgscope/internal/domain"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
	"github.com/emiliopalmerini/rtgscope/internal/ports"
)

// State is whether the view has received a listing yet.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the view state taken for one render.
type Snapshot struct {
	State   State
	Records []domain.ExperimentRecord
}

// View owns the experiments collection. Only Load writes it; renders read
// snapshots. Load failures leave the collection untouched and are never
// returned to callers.
type View struct {
	source  ports.ExperimentSource
	metrics ports.MetricsExporter
	lggr    logger.Logger

	mountOnce sync.Once
	loaded    chan struct{}

	mu      sync.RWMutex
	state   State
	records []domain.ExperimentRecord
}

// Option configures a View.
type Option func(*View)

func WithLogger(lggr logger.Logger) Option {
	return func(v *View) {
		v.lggr = lggr
	}
}

func WithMetrics(m ports.MetricsExporter) Option {
	return func(v *View) {
		v.metrics = m
	}
}

// NewView returns an empty view reading from source. It loads nothing until
// Mount or Load is called.
func NewView(source ports.ExperimentSource, opts ...Option) *View {
	v := &View{
		source:  source,
		metrics: otel.NewNoOpExporter(),
		lggr:    logger.Nop(),
		loaded:  make(chan struct{}),
		records: []domain.ExperimentRecord{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount starts the view's single background load. Only the first call has
// any effect; the view renders empty until the load completes.
func (v *View) Mount(ctx context.Context) {
	v.mountOnce.Do(func() {
		go func() {
			defer close(v.loaded)
			v.Load(ctx)
		}()
	})
}

// Wait blocks until the mount load has finished or ctx is done.
func (v *View) Wait(ctx context.Context) error {
	select {
	case <-v.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load fetches the listing once and, on success, replaces the collection
// with the response verbatim.
func (v *View) Load(ctx context.Context) {
	records, err := v.source.List(ctx)
	if err != nil {
		v.metrics.RecordLoad(ctx, 0, err)
		v.lggr.Debugw("experiments load failed", "err", err)
		return
	}
	v.metrics.RecordLoad(ctx, len(records), nil)

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			v.lggr.Debugw("experiment record failed validation", "index", i, "err", err)
		}
	}

	replaced := cloneRecords(records)

	v.mu.Lock()
	v.records = replaced
	v.state = StateLoaded
	v.mu.Unlock()

	v.lggr.Debugw("experiments loaded", "rows", len(replaced))
}

// Snapshot returns the current state and a copy of the collection.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return Snapshot{State: v.state, Records: cloneRecords(v.records)}
}

func cloneRecords(records []domain.ExperimentRecord) []domain.ExperimentRecord {
	out := make([]domain.ExperimentRecord, len(records))
	for i, rec := range records {
		rec.Channels = slices.Clone(rec.Channels)
		out[i] = rec
	}
	return out
}
