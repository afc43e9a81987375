// Package ingest drives the fetch cycles: fan out to a group's sources,
// collect whatever each one produced, and write the batch to the store. A
// failing source contributes nothing to the cycle; it never aborts it.
package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
	"github.com/geowatch/osint-monitor/internal/source"
	"github.com/geowatch/osint-monitor/internal/store"
)

// Archive receives every stored batch for long-term retention. Optional;
// the store remains the source of truth for queries.
type Archive interface {
	Publish(ctx context.Context, items []domain.Item) error
}

// Runner executes ingestion cycles for one source group, writing results to
// one store namespace.
type Runner struct {
	group     string
	namespace string
	sources   []source.Source
	store     *store.Store
	archive   Archive
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewRunner builds a cycle runner. archive may be nil.
func NewRunner(group, namespace string, sources []source.Source, st *store.Store, archive Archive, metrics *observability.Metrics, logger *slog.Logger) *Runner {
	return &Runner{
		group:     group,
		namespace: namespace,
		sources:   sources,
		store:     st,
		archive:   archive,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run executes one full cycle: concurrent fetch across all sources, then a
// single store write of everything collected.
func (r *Runner) Run(ctx context.Context) {
	started := time.Now()
	r.metrics.CyclesRunning.Inc()
	defer func() {
		r.metrics.CyclesRunning.Dec()
		r.metrics.CycleDuration.WithLabelValues(r.group).Observe(time.Since(started).Seconds())
	}()

	var mu sync.Mutex
	var collected []domain.Item

	var wg sync.WaitGroup
	for _, src := range r.sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			items, err := src.Fetch(ctx)
			if err != nil {
				r.metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
				r.logger.Warn("source fetch failed",
					slog.String("source", src.Name()),
					slog.String("error", err.Error()))
				return
			}
			mu.Lock()
			collected = append(collected, items...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	if len(collected) == 0 {
		r.logger.Debug("cycle produced no items", slog.String("group", r.group))
		return
	}

	if err := r.store.Write(ctx, r.namespace, collected); err != nil {
		r.logger.Error("store write failed",
			slog.String("group", r.group),
			slog.String("error", err.Error()))
		return
	}

	if r.archive != nil {
		if err := r.archive.Publish(ctx, collected); err != nil {
			r.metrics.ArchiveErrors.Inc()
			r.logger.Warn("archive publish failed",
				slog.String("group", r.group),
				slog.String("error", err.Error()))
		}
	}

	r.logger.Info("cycle complete",
		slog.String("group", r.group),
		slog.Int("items", len(collected)),
		slog.Duration("took", time.Since(started)))
}
