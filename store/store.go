// Package store caches solved plans in a SQLite file so that repeated
// problems skip the search.
//
// Plans are keyed by the canonical text of the problem (see
// balancer.Problem.String), which already folds input order away. Only
// solved results are stored.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/katalvlaran/flowbalance/balancer"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrNotSolved is returned by Put for results without a plan.
var ErrNotSolved = errors.New("store: only solved results can be cached")

// Plan is a cached solution.
type Plan struct {
	Problem   string          `json:"problem"`
	RunID     string          `json:"run_id"`
	Steps     []balancer.Step `json:"steps"`
	CreatedAt time.Time       `json:"created_at"`
}

// Result rebuilds a solved balancer.Result from p. Stats are zero since no
// search ran.
func (p *Plan) Result() *balancer.Result {
	return &balancer.Result{
		RunID:  p.RunID,
		Reason: balancer.Solved,
		Steps:  p.Steps,
	}
}

// Store is a SQLite-backed plan cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the cache at path, creating parent directories as
// needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS plans (
		problem    TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL,
		cost       INTEGER NOT NULL,
		steps      BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create plans table: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Get returns the cached plan for p. The boolean is false on a miss.
func (s *Store) Get(ctx context.Context, p *balancer.Problem) (*Plan, bool, error) {
	key := p.String()
	var (
		runID   string
		payload []byte
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, steps, created_at FROM plans WHERE problem = ?`, key,
	).Scan(&runID, &payload, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("select plan: %w", err)
	}

	plan := &Plan{Problem: key, RunID: runID, CreatedAt: time.Unix(0, created).UTC()}
	if err := json.Unmarshal(payload, &plan.Steps); err != nil {
		return nil, false, fmt.Errorf("decode plan %q: %w", key, err)
	}

	return plan, true, nil
}

// Put stores the plan of a solved result, replacing any previous entry.
func (s *Store) Put(ctx context.Context, p *balancer.Problem, res *balancer.Result) error {
	if res == nil || !res.Solved() {
		return ErrNotSolved
	}
	data, err := json.Marshal(res.Steps)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO plans(problem, run_id, cost, steps, created_at) VALUES(?,?,?,?,?)
		ON CONFLICT(problem) DO UPDATE SET
			run_id=excluded.run_id, cost=excluded.cost, steps=excluded.steps, created_at=excluded.created_at`,
		p.String(), res.RunID, res.Cost(), data, s.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	return nil
}

// Delete drops the cached plan for p, if any.
func (s *Store) Delete(ctx context.Context, p *balancer.Problem) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE problem = ?`, p.String()); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	return nil
}

// Len returns the number of cached plans.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}

	return n, nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
