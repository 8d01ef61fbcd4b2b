// Package fleet fans probes out across every configured target and
// serves the aggregated snapshot through a TTL cache.
package fleet

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/probe"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

const (
	DefaultTTL         = 30 * time.Second
	DefaultConcurrency = 16
)

// Prober owns the snapshot cache. Reads see a snapshot whose results and
// counts always agree; overlapping refreshes serialize instead of racing.
type Prober struct {
	Logger      *zap.Logger
	Targets     repo.TargetStore
	Pinger      probe.Pinger
	TTL         time.Duration
	Concurrency int

	refreshMu sync.Mutex // serializes refreshes

	mu       sync.RWMutex // guards cached/cachedAt
	cached   *domain.FleetSnapshot
	cachedAt time.Time
}

func NewProber(logger *zap.Logger, targets repo.TargetStore, pinger probe.Pinger, ttl time.Duration, concurrency int) *Prober {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Prober{
		Logger:      logger,
		Targets:     targets,
		Pinger:      pinger,
		TTL:         ttl,
		Concurrency: concurrency,
	}
}

// Snapshot returns the fleet view. With useCache it serves the cached
// snapshot while it is younger than the TTL; otherwise it probes every
// target and installs the fresh snapshot. A caller that arrives while
// another refresh is in flight adopts that refresh's result rather than
// probing again.
func (p *Prober) Snapshot(ctx context.Context, useCache bool) (domain.FleetSnapshot, error) {
	if useCache {
		if s, ok := p.fresh(); ok {
			return s, nil
		}
	}

	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	// Re-check under the refresh lock: the refresh we queued behind may
	// have produced exactly the snapshot we wanted.
	if useCache {
		if s, ok := p.fresh(); ok {
			return s, nil
		}
	}

	targets, err := p.Targets.List(ctx)
	if err != nil {
		return domain.FleetSnapshot{}, err
	}

	results := p.probeAll(ctx, targets)
	Rank(results)
	snap := buildSnapshot(results)

	p.mu.Lock()
	p.cached = &snap
	p.cachedAt = time.Now()
	p.mu.Unlock()

	if p.Logger != nil {
		p.Logger.Info("fleet_snapshot",
			zap.Int("total", snap.Total),
			zap.Int("online", snap.OnlineCount),
			zap.Int("players", snap.TotalPlayers),
		)
	}
	return snap, nil
}

// Invalidate forces the next Snapshot call to bypass the cache.
func (p *Prober) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

func (p *Prober) fresh() (domain.FleetSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached == nil || time.Since(p.cachedAt) >= p.TTL {
		return domain.FleetSnapshot{}, false
	}
	return *p.cached, true
}

// probeAll runs one probe per target through a bounded worker pool. A
// failing target contributes an offline result, never an aborted batch.
func (p *Prober) probeAll(ctx context.Context, targets []domain.Target) []domain.ProbeResult {
	results := make([]domain.ProbeResult, len(targets))

	sem := make(chan struct{}, p.Concurrency)
	var wg sync.WaitGroup
	for i, tgt := range targets {
		i, t := i, tgt
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			results[i] = p.Pinger.Probe(ctx, t)
		}()
	}
	wg.Wait()

	return results
}

func buildSnapshot(results []domain.ProbeResult) domain.FleetSnapshot {
	snap := domain.FleetSnapshot{
		Results:     results,
		Total:       len(results),
		GeneratedAt: time.Now().UTC(),
	}
	for _, r := range results {
		if r.Online {
			snap.OnlineCount++
			snap.TotalPlayers += r.PlayersOnline
		}
	}
	return snap
}
