package probe

import (
	"context"
	"testing"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

type scriptedPinger struct {
	calls   int
	results []domain.ProbeResult
}

func (s *scriptedPinger) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	r := s.results[s.calls]
	if s.calls < len(s.results)-1 {
		s.calls++
	}
	return r
}

func offline(reason string) domain.ProbeResult {
	return domain.ProbeResult{Online: false, Error: &reason}
}

func TestRetryPinger_StopsOnSuccess(t *testing.T) {
	inner := &scriptedPinger{results: []domain.ProbeResult{
		offline(ReasonTimeout),
		{Online: true, PlayersOnline: 3},
	}}
	r := &RetryPinger{Inner: inner, Attempts: 3, Backoff: time.Millisecond}

	res := r.Probe(context.Background(), domain.Target{})
	if !res.Online || res.PlayersOnline != 3 {
		t.Fatalf("want the successful attempt, got %+v", res)
	}
	if inner.calls != 1 {
		t.Fatalf("want 2 probes, inner advanced %d times", inner.calls)
	}
}

func TestRetryPinger_KeepsLastFailure(t *testing.T) {
	inner := &scriptedPinger{results: []domain.ProbeResult{
		offline(ReasonConnectError),
	}}
	r := &RetryPinger{Inner: inner, Attempts: 2, Backoff: 0}

	res := r.Probe(context.Background(), domain.Target{})
	if res.Online || res.Error == nil || *res.Error != ReasonConnectError {
		t.Fatalf("want last failure preserved, got %+v", res)
	}
}
