package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

// Ports (interfaces) — swap in any persistence adapter.
type TargetStore interface {
	// List returns the configured targets in stable store order.
	List(ctx context.Context) ([]domain.Target, error)
	// Save replaces the whole target set.
	Save(ctx context.Context, targets []domain.Target) error
}

// NewTargetID mints an identifier for a target saved without one.
// Nanosecond resolution separates successive Save calls; the batch
// index separates records within one call.
func NewTargetID(now time.Time, i int) domain.TargetID {
	return domain.TargetID(fmt.Sprintf("%s.%04d", now.UTC().Format("20060102T150405.000000000"), i))
}
