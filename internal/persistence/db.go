// Package persistence provides SQLite-based session storage: completed
// waves, periodic crowd snapshots, and key/value metadata.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/crowdwave/internal/engine"
	"github.com/talgya/crowdwave/internal/wave"
)

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS waves (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		origin TEXT NOT NULL,
		direction TEXT NOT NULL,
		path_json TEXT NOT NULL,
		results_json TEXT NOT NULL,
		score INTEGER NOT NULL,
		max_score INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		taken_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveWave stores a completed wave.
func (db *DB) SaveWave(w *wave.Wave) error {
	pathJSON, err := json.Marshal(w.Path)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}
	resultsJSON, err := json.Marshal(w.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	var endedAt any
	if w.EndedAt != nil {
		endedAt = w.EndedAt.UTC().Format(time.RFC3339Nano)
	}

	failed := 0
	if w.IsFailed() {
		failed = 1
	}

	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO waves
		(id, type, origin, direction, path_json, results_json, score, max_score, failed, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(), string(w.Type), w.Origin, string(w.Direction),
		string(pathJSON), string(resultsJSON),
		w.Score(), w.MaxPossibleScore(), failed,
		w.StartedAt.UTC().Format(time.RFC3339Nano), endedAt,
	)
	if err != nil {
		return fmt.Errorf("save wave: %w", err)
	}
	return nil
}

// WaveRecord is the stored form of a completed wave.
type WaveRecord struct {
	ID          string  `db:"id" json:"id"`
	Type        string  `db:"type" json:"type"`
	Origin      string  `db:"origin" json:"origin"`
	Direction   string  `db:"direction" json:"direction"`
	PathJSON    string  `db:"path_json" json:"-"`
	ResultsJSON string  `db:"results_json" json:"-"`
	Score       int     `db:"score" json:"score"`
	MaxScore    int     `db:"max_score" json:"max_score"`
	Failed      int     `db:"failed" json:"failed"`
	StartedAt   string  `db:"started_at" json:"started_at"`
	EndedAt     *string `db:"ended_at" json:"ended_at,omitempty"`
}

// LoadRecentWaves returns up to n most recent waves, newest first.
func (db *DB) LoadRecentWaves(n int) ([]WaveRecord, error) {
	var recs []WaveRecord
	err := db.conn.Select(&recs, `
		SELECT id, type, origin, direction, path_json, results_json,
		       score, max_score, failed, started_at, ended_at
		FROM waves ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("load waves: %w", err)
	}
	return recs, nil
}

// SaveSnapshot stores a periodic crowd statistics snapshot.
func (db *DB) SaveSnapshot(tick uint64, stats engine.SimStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO snapshots (tick, stats_json, taken_at) VALUES (?, ?, ?)`,
		tick, string(statsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// SetMeta stores a metadata key/value pair.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	if err := db.conn.Get(&value, `SELECT value FROM meta WHERE key = ?`, key); err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}
