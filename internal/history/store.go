// Package history keeps a local SQLite log of simulation runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    circuit TEXT NOT NULL,
    shots INTEGER NOT NULL,
    seed TEXT NOT NULL,        -- uint64 does not fit INTEGER
    p_reset REAL NOT NULL DEFAULT 0,
    p_meas REAL NOT NULL DEFAULT 0,
    p_gate1 REAL NOT NULL DEFAULT 0,
    noisy INTEGER NOT NULL DEFAULT 0,
    counts TEXT NOT NULL       -- JSON object
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Record is one stored simulation run.
type Record struct {
	ID        int64          `json:"id" yaml:"id"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	Circuit   string         `json:"circuit" yaml:"circuit"`
	Shots     int            `json:"shots" yaml:"shots"`
	Seed      uint64         `json:"seed" yaml:"seed"`
	PReset    float64        `json:"p_reset" yaml:"p_reset"`
	PMeas     float64        `json:"p_meas" yaml:"p_meas"`
	PGate1    float64        `json:"p_gate1" yaml:"p_gate1"`
	Noisy     bool           `json:"noisy" yaml:"noisy"`
	Counts    map[string]int `json:"counts" yaml:"counts"`
}

// Store is a SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

/*
Open creates or opens the history database at path, creating its parent
directory when needed. The special path ":memory:" opens a private in-memory
database.
*/
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// A single connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the location the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Save inserts a record and returns its id. A zero CreatedAt is set to now.
func (s *Store) Save(ctx context.Context, r *Record) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode counts: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (created_at, circuit, shots, seed, p_reset, p_meas, p_gate1, noisy, counts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CreatedAt.Format(time.RFC3339Nano),
		r.Circuit,
		r.Shots,
		strconv.FormatUint(r.Seed, 10),
		r.PReset,
		r.PMeas,
		r.PGate1,
		boolToInt(r.Noisy),
		string(counts),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	r.ID = id
	return id, nil
}

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, circuit, shots, seed, p_reset, p_meas, p_gate1, noisy, counts
		FROM runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			createdAt string
			seed      string
			noisy     int
			counts    string
		)

		if err := rows.Scan(&r.ID, &createdAt, &r.Circuit, &r.Shots, &seed, &r.PReset, &r.PMeas, &r.PGate1, &noisy, &counts); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("run %d: bad timestamp: %w", r.ID, err)
		}
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("run %d: bad seed: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(counts), &r.Counts); err != nil {
			return nil, fmt.Errorf("run %d: bad counts: %w", r.ID, err)
		}
		r.Noisy = noisy != 0

		records = append(records, r)
	}

	return records, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
