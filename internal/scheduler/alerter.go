package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

// Alerter watches each tick's snapshot for online/offline transitions
// and notifies on them, with a cooldown suppressing repeated DOWN noise.
type Alerter struct {
	prober   SnapshotSource
	alertDB  repo.AlertStateStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg AlerterConfig
}

func NewAlerter(
	prober SnapshotSource,
	alertDB repo.AlertStateStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	return &Alerter{
		prober:   prober,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.scanOnce(ctx)
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	snap, err := a.prober.Snapshot(ctx, true)
	if err != nil {
		return err
	}

	now := time.Now()

	for _, r := range snap.Results {
		rec, _ := a.alertDB.Get(ctx, r.TargetID)

		// Has the online/offline state changed compared to what we last recorded?
		stateChanged := rec == nil || rec.LastOnline != r.Online

		// Cooldown only matters for DOWN alerts (suppresses noisy repeats).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		// Decide which alert (if any) should be sent.
		downAlert := stateChanged && !r.Online && cooled
		recoveryAlert := stateChanged && r.Online && a.cfg.AlertOnRecovery // bypass cooldown

		if downAlert || recoveryAlert {
			title := "🔴 Server DOWN"
			if r.Online {
				title = "🟢 Server RECOVERED"
			}

			reasonTxt := "n/a"
			if r.Error != nil {
				reasonTxt = *r.Error
			}
			latencyTxt := "n/a"
			if r.LatencyMS != nil {
				latencyTxt = fmt.Sprintf("%d ms", *r.LatencyMS)
			}

			text := fmt.Sprintf(
				"Server: %s\nAddress: %s:%d\nPlayers: %d/%d\nLatency: %s\nReason: %s\nObserved: %s",
				r.Name, r.Address, r.Port, r.PlayersOnline, r.PlayersMax,
				latencyTxt, reasonTxt, r.ObservedAt.Format(time.RFC3339),
			)

			// Best‑effort send and record the send time
			_ = a.notifier.Send(ctx, title, text)
			_ = a.alertDB.Set(ctx, r.TargetID, r.Online, now)
			continue
		}

		// If state changed but we did not send (e.g., DOWN within cooldown or
		// recovery alerts disabled), still record the new state without a send time.
		if stateChanged {
			_ = a.alertDB.Set(ctx, r.TargetID, r.Online, time.Time{})
		}
	}

	return nil
}
