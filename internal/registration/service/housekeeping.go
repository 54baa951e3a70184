package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
)

// HousekeepingService periodically reloads the guard snapshot, picking up
// settings edited outside the API, and publishes lifecycle gauges.
type HousekeepingService struct {
	Store    store.Store
	Guard    *Guard
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService returns a stopped worker. A non-positive interval
// defaults to one minute.
func NewHousekeepingService(st store.Store, guard *Guard, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Store:    st,
		Guard:    guard,
		Metrics:  m,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress run has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs one pass. Each step is independent; a failure is logged
// and the next step still runs.
func (s *HousekeepingService) RunOnce(ctx context.Context) {
	if err := s.Guard.Reload(ctx, s.Store.Settings()); err != nil {
		s.Logger.Error("failed to reload settings", "error", err)
	}

	stats, err := s.Store.Users().Stats(ctx)
	if err != nil {
		s.Logger.Error("failed to collect user stats", "error", err)
		return
	}
	s.Metrics.SetUsers(stats)
	s.Logger.Debug("housekeeping completed", "users", stats.Total, "checked_in", stats.CheckedIn)
}
