// Package scheduler runs the daily movie status sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/cinemabooking/config"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

type StatusRefresher interface {
	RefreshStatuses(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron      gocron.Scheduler
	job       gocron.Job
	refresher StatusRefresher
	timeout   time.Duration
}

// New registers a daily job at cfg.StatusSweepAt ("HH:MM") in cfg.Timezone.
func New(cfg config.WorkerConfig, refresher StatusRefresher) (*Scheduler, error) {
	hour, minute, err := parseClock(cfg.StatusSweepAt)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	s := &Scheduler{cron: cron, refresher: refresher, timeout: 5 * time.Minute}
	s.job, err = cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(s.refresh),
		gocron.WithName("movie-status-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cron.Shutdown()
		return nil, fmt.Errorf("register status sweep: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

// NextRun reports when the sweep fires next. Only meaningful after Start.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

// RunNow performs one sweep synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	return s.refresher.RefreshStatuses(ctx)
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	changed, err := s.refresher.RefreshStatuses(ctx)
	if err != nil {
		logger.Error("movie status sweep", "err", err)
		return
	}
	logger.Info("movie status sweep done", "changed", changed)
}

func parseClock(at string) (uint, uint, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("status_sweep_at %q: want HH:MM", at)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}
