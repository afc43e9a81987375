package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs each registered group's cycle on its own interval. Every
// job also fires once at startup so the map is populated before the first
// tick.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	logger *slog.Logger
	jobs   []job
}

type job struct {
	name string
	run  func(ctx context.Context)
}

func NewScheduler(ctx context.Context, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		logger: logger,
	}
}

// Register schedules run at the given interval.
func (s *Scheduler) Register(name string, interval time.Duration, run func(ctx context.Context)) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := s.cron.AddFunc(spec, func() {
		run(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.jobs = append(s.jobs, job{name: name, run: run})
	s.logger.Info("scheduled ingestion group",
		slog.String("group", name),
		slog.Duration("interval", interval))
	return nil
}

// Start fires every job once immediately, then hands off to cron.
func (s *Scheduler) Start() {
	for _, j := range s.jobs {
		go j.run(s.ctx)
	}
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs started by cron.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
