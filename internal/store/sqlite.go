//go:build sqlite

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"rstdpnet/internal/report"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the optional durable report.Store, grounded on
// internal/storage/sqlite.go. It opens a single table of run summaries; a
// summary is only ever appended, never read back by this process — the
// database exists for external inspection (e.g. sqlite3 CLI, a dashboard)
// after the simulator exits.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore returns a store that will open path on Init.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (report.Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite report path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_summaries (
			run_id              TEXT NOT NULL,
			ticks               INTEGER NOT NULL,
			reward_sum          INTEGER NOT NULL,
			penalty_sum         INTEGER NOT NULL,
			food_eaten          INTEGER NOT NULL,
			danger_hit          INTEGER NOT NULL,
			food_time           INTEGER NOT NULL,
			danger_time         INTEGER NOT NULL,
			confidence_histogram TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveSummary(ctx context.Context, sum report.Summary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	histogram, err := json.Marshal(sum.ConfidenceHistogram)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO run_summaries (
			run_id, ticks, reward_sum, penalty_sum,
			food_eaten, danger_hit, food_time, danger_time, confidence_histogram
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sum.RunID, sum.Ticks, sum.RewardSum, sum.PenaltySum,
		sum.FoodEaten, sum.DangerHit, sum.FoodTime, sum.DangerTime, string(histogram))
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite report store not initialized")
	}
	return s.db, nil
}
