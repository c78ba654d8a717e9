package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sweeney/softphone-sim/internal/call"
)

const pgOpTimeout = 5 * time.Second

// PGStore persists the active-call snapshot as a single JSONB row per
// agent in Postgres.
type PGStore struct {
	pool    *pgxpool.Pool
	agentID string
}

// NewPGStore connects to Postgres and ensures the snapshot table exists.
func NewPGStore(ctx context.Context, dsn, agentID string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS active_calls (
			agent_id   TEXT PRIMARY KEY,
			calls      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating active_calls table: %w", err)
	}
	return &PGStore{pool: pool, agentID: agentID}, nil
}

func (s *PGStore) Load() (map[string]call.Call, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT calls FROM active_calls WHERE agent_id = $1`, s.agentID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]call.Call{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading active calls for %s: %w", s.agentID, err)
	}

	var calls map[string]call.Call
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("decoding active calls for %s: %w", s.agentID, err)
	}
	if calls == nil {
		calls = map[string]call.Call{}
	}
	return calls, nil
}

func (s *PGStore) Save(calls map[string]call.Call) error {
	data, err := json.Marshal(calls)
	if err != nil {
		return fmt.Errorf("encoding active calls: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO active_calls (agent_id, calls, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (agent_id) DO UPDATE
		SET calls = EXCLUDED.calls, updated_at = now()`,
		s.agentID, data)
	if err != nil {
		return fmt.Errorf("saving active calls for %s: %w", s.agentID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
