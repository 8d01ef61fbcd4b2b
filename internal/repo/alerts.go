package repo

import (
	"context"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

// AlertRecord holds last-known state and the last time we sent a
// notification for a target. LastOnline is the last ONLINE/OFFLINE we
// saw, LastSentAt drives the down-alert cooldown.
type AlertRecord struct {
	TargetID   domain.TargetID
	LastOnline bool
	LastSentAt *time.Time
}

// AlertStateStore is implemented by a persistence layer to store alert state.
type AlertStateStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, targetID domain.TargetID) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() the send time is cleared.
	Set(ctx context.Context, targetID domain.TargetID, online bool, sentAt time.Time) error
}
