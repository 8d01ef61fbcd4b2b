package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

var _ repo.AlertStateStore = (*Store)(nil)

// ---- AlertStateStore ----

func (s *Store) Get(ctx context.Context, targetID domain.TargetID) (*repo.AlertRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT target_id, last_online, last_sent_at
		   FROM alert_state
		  WHERE target_id = $1`, string(targetID))

	var (
		id     string
		online bool
		sentAt sql.NullTime
	)
	if err := row.Scan(&id, &online, &sentAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// no record yet
			return nil, nil
		}
		return nil, fmt.Errorf("load alert state: %w", err)
	}
	rec := &repo.AlertRecord{TargetID: domain.TargetID(id), LastOnline: online}
	if sentAt.Valid {
		t := sentAt.Time
		rec.LastSentAt = &t
	}
	return rec, nil
}

func (s *Store) Set(ctx context.Context, targetID domain.TargetID, online bool, sentAt time.Time) error {
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO alert_state (target_id, last_online, last_sent_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (target_id)
		 DO UPDATE SET last_online = EXCLUDED.last_online,
		               last_sent_at = EXCLUDED.last_sent_at`,
		string(targetID), online, ts)
	if err != nil {
		return fmt.Errorf("upsert alert state: %w", err)
	}
	return nil
}
