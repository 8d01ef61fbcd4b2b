package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

var _ repo.TargetStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- TargetStore ----

func (s *Store) List(ctx context.Context) ([]domain.Target, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, address, port, category, description, created_at
		   FROM targets
		  ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		var (
			t    domain.Target
			id   string
			port int32
		)
		if err := rows.Scan(&id, &t.Name, &t.Address, &port, &t.Category, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		t.ID = domain.TargetID(id)
		t.Port = uint16(port)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save replaces the whole target set in one transaction so a reader
// never sees a half-written list.
func (s *Store) Save(ctx context.Context, targets []domain.Target) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM targets`); err != nil {
		return fmt.Errorf("clear targets: %w", err)
	}

	now := time.Now().UTC()
	for i, t := range targets {
		if t.ID == "" {
			t.ID = repo.NewTargetID(now, i)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO targets (id, name, address, port, category, description, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(t.ID), t.Name, t.Address, int32(t.Port), t.Category, t.Description, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert target: %w", err)
		}
	}
	return tx.Commit(ctx)
}
