package probe

import (
	"context"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

// RetryPinger re-probes a target that came back offline, keeping the
// last attempt's result. Useful against flaky residential uplinks; one
// attempt (no retry) is the default elsewhere.
type RetryPinger struct {
	Inner    Pinger
	Attempts int
	Backoff  time.Duration
}

var _ Pinger = (*RetryPinger)(nil)

func (r *RetryPinger) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last domain.ProbeResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Probe(ctx, t)
		if last.Online {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	return last
}
