package memory

import (
	"context"
	"sync"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

var _ repo.TargetStore = (*Store)(nil)
var _ repo.AlertStateStore = (*Store)(nil)

// Store keeps targets and alert state in memory. Used in tests and when
// no file or database backend is configured.
type Store struct {
	mu      sync.RWMutex
	targets []domain.Target
	alerts  map[domain.TargetID]repo.AlertRecord
}

func New() *Store {
	return &Store{alerts: make(map[domain.TargetID]repo.AlertRecord)}
}

func (m *Store) List(ctx context.Context) ([]domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Target, len(m.targets))
	copy(out, m.targets)
	return out, nil
}

func (m *Store) Save(ctx context.Context, targets []domain.Target) error {
	now := time.Now().UTC()
	cp := make([]domain.Target, len(targets))
	copy(cp, targets)
	for i := range cp {
		if cp[i].ID == "" {
			cp[i].ID = repo.NewTargetID(now, i)
		}
		if cp[i].CreatedAt.IsZero() {
			cp[i].CreatedAt = now
		}
	}

	m.mu.Lock()
	m.targets = cp
	m.mu.Unlock()
	return nil
}

func (m *Store) Get(ctx context.Context, targetID domain.TargetID) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.alerts[targetID]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (m *Store) Set(ctx context.Context, targetID domain.TargetID, online bool, sentAt time.Time) error {
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.mu.Lock()
	m.alerts[targetID] = repo.AlertRecord{TargetID: targetID, LastOnline: online, LastSentAt: ts}
	m.mu.Unlock()
	return nil
}
