//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"evolvekit/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
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

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRunConfig(ctx context.Context, cfg model.RunConfig) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRunConfig(cfg)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO run_configs (run_id, created_at, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, cfg.RunID, cfg.CreatedAtUTC, cfg.SchemaVersion, cfg.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetRunConfig(ctx context.Context, runID string) (model.RunConfig, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunConfig{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM run_configs WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunConfig{}, false, nil
		}
		return model.RunConfig{}, false, err
	}

	cfg, err := DecodeRunConfig(payload)
	if err != nil {
		return model.RunConfig{}, false, fmt.Errorf("decode run config %s: %w", runID, err)
	}
	return cfg, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.RunConfig, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT run_id, payload FROM run_configs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.RunConfig
	for rows.Next() {
		var (
			runID   string
			payload []byte
		)
		if err := rows.Scan(&runID, &payload); err != nil {
			return nil, err
		}
		cfg, err := DecodeRunConfig(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run config %s: %w", runID, err)
		}
		runs = append(runs, cfg)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, snapshot model.GenerationSnapshot) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeGeneration(snapshot)
	if err != nil {
		return err
	}
	var best sql.NullFloat64
	if v, ok := snapshot.BestFitness(); ok {
		best = sql.NullFloat64{Float64: v, Valid: true}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, best_fitness, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, snapshot.RunID, snapshot.Generation, best, snapshot.SchemaVersion, snapshot.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetGeneration(ctx context.Context, runID string, generation int) (model.GenerationSnapshot, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.GenerationSnapshot{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `
		SELECT payload FROM generations WHERE run_id = ? AND generation = ?
	`, runID, generation).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GenerationSnapshot{}, false, nil
		}
		return model.GenerationSnapshot{}, false, err
	}

	snapshot, err := DecodeGeneration(payload)
	if err != nil {
		return model.GenerationSnapshot{}, false, fmt.Errorf("decode generation %s/%d: %w", runID, generation, err)
	}
	return snapshot, true, nil
}

func (s *SQLiteStore) GetGenerations(ctx context.Context, runID string) ([]model.GenerationSnapshot, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, payload FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []model.GenerationSnapshot
	for rows.Next() {
		var (
			generation int
			payload    []byte
		)
		if err := rows.Scan(&generation, &payload); err != nil {
			return nil, err
		}
		snapshot, err := DecodeGeneration(payload)
		if err != nil {
			return nil, fmt.Errorf("decode generation %s/%d: %w", runID, generation, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM generations WHERE run_id = ?`, runID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_configs WHERE run_id = ?`, runID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Reset drops every recorded run and recreates the empty schema.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS generations;
		DROP TABLE IF EXISTS run_configs;
	`); err != nil {
		return err
	}
	return createTables(ctx, db)
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
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_configs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
