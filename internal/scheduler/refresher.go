package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

// SnapshotSource is the slice of the fleet prober the scheduler needs.
type SnapshotSource interface {
	Snapshot(ctx context.Context, useCache bool) (domain.FleetSnapshot, error)
}

// Refresher keeps the snapshot cache warm by forcing a fresh probe pass
// on an interval, so API readers mostly hit a recent cache entry.
type Refresher struct {
	Logger   *zap.Logger
	Prober   SnapshotSource
	Interval time.Duration
}

func NewRefresher(logger *zap.Logger, prober SnapshotSource, interval time.Duration) *Refresher {
	if interval < 0 {
		interval = 0
	}
	return &Refresher{Logger: logger, Prober: prober, Interval: interval}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("refresher_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("refresher_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context) {
	snap, err := r.Prober.Snapshot(ctx, false)
	if err != nil {
		r.Logger.Warn("refresher_snapshot_error", zap.Error(err))
		return
	}
	r.Logger.Debug("refresher_pass",
		zap.Int("total", snap.Total),
		zap.Int("online", snap.OnlineCount),
		zap.Int("players", snap.TotalPlayers),
	)
}
