// Package file persists the server list as a JSON file with atomic
// tmp-file-plus-rename writes. This is the default backend when no
// database is configured.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

var _ repo.TargetStore = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	path    string
	targets []domain.Target
}

// New creates the store and loads the existing list if the file is
// present. A missing file is an empty list, not an error.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Target, len(s.targets))
	copy(out, s.targets)
	return out, nil
}

func (s *Store) Save(ctx context.Context, targets []domain.Target) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = cp
	return s.persist()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.targets = []domain.Target{}
			return nil
		}
		return fmt.Errorf("read server list: %w", err)
	}
	if len(data) == 0 {
		s.targets = []domain.Target{}
		return nil
	}
	var targets []domain.Target
	if err := json.Unmarshal(data, &targets); err != nil {
		return fmt.Errorf("parse server list: %w", err)
	}
	s.targets = targets
	return nil
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.targets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode server list: %w", err)
	}
	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp server list: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace server list: %w", err)
	}
	return nil
}
