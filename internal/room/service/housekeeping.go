package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tetherchat/tether/internal/room/store"
)

// staleRoomRetention is how long an expired PENDING room is kept around
// before housekeeping purges it. Joins keep failing "expired" during
// this window instead of "not found".
const staleRoomRetention = 7 * 24 * time.Hour

// HousekeepingService is the background reconciliation pass: it retries
// hard deletion of soft-deleted users and purges long-expired pending
// rooms so the rooms table doesn't grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service; a non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut
// it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress pass ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep performs one reconciliation pass. Failures are independent:
// one stuck user doesn't stop the rest.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	s.Logger.Debug("housekeeping sweep starting")

	if err := s.Store.Rooms().DeleteStalePendingRooms(ctx, time.Now().Add(-staleRoomRetention)); err != nil {
		s.Logger.Error("failed to purge stale pending rooms", "error", err)
	}

	pending, err := s.Store.Users().ListDeletionRequested(ctx)
	if err != nil {
		s.Logger.Error("failed to list users pending deletion", "error", err)
		return
	}

	var deleted int
	for _, u := range pending {
		if err := s.Store.Users().DeleteUser(ctx, u.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			// Still referenced by a room; retry next sweep.
			s.Logger.Debug("user hard delete still blocked",
				"user_id", u.ID, "error", err)
			continue
		}
		deleted++
	}

	s.Logger.Info("housekeeping sweep completed",
		"users_pending", len(pending),
		"users_deleted", deleted,
	)
}
