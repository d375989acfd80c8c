// Package store persists run summaries to Postgres so successive admission
// rounds can be compared over time. Persistence is optional: commands skip it
// entirely when DATABASE_URL is not configured.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/admission-sim/admission-sim/engine"
)

// Schema creates the tables SaveRun writes to. Applied with Init; safe to
// re-apply.
const Schema = `
CREATE TABLE IF NOT EXISTS admission_runs (
	id          BIGSERIAL PRIMARY KEY,
	ran_at      TIMESTAMPTZ NOT NULL,
	target      TEXT        NOT NULL,
	skipped     INT         NOT NULL,
	tiers       TEXT[]      NOT NULL
);

CREATE TABLE IF NOT EXISTS admission_outcomes (
	run_id        BIGINT  NOT NULL REFERENCES admission_runs(id) ON DELETE CASCADE,
	program_id    TEXT    NOT NULL,
	tier          TEXT    NOT NULL,
	outcome       TEXT    NOT NULL,
	score         DOUBLE PRECISION NOT NULL,
	cutoff        DOUBLE PRECISION,
	ranked_ahead  INT     NOT NULL,
	informational BOOLEAN NOT NULL
);
`

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open creates and verifies a pgxpool connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Init applies the schema.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SaveRun inserts one run row plus one row per outcome, atomically.
func (s *Store) SaveRun(ctx context.Context, run *engine.RunResult, target engine.ID) error {
	tiers := []string{}
	if run.Primary != nil {
		tiers = append(tiers, run.Primary.Tier.String())
	}
	if run.Secondary != nil {
		tiers = append(tiers, run.Secondary.Tier.String())
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO admission_runs (ran_at, target, skipped, tiers)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		time.Now().UTC(), string(target), run.Skipped, tiers,
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, o := range run.Outcomes {
		var cutoff *float64
		if o.CutoffKnown {
			c := o.Cutoff
			cutoff = &c
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO admission_outcomes
			 (run_id, program_id, tier, outcome, score, cutoff, ranked_ahead, informational)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, o.ProgramID, o.Tier.String(), o.Kind.String(),
			o.Score, cutoff, o.RankedAhead, o.Informational,
		)
		if err != nil {
			return fmt.Errorf("insert outcome for %s: %w", o.ProgramID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	logrus.Infof("persisted run %d with %d outcomes", runID, len(run.Outcomes))
	return nil
}
