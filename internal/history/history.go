// Package history keeps a SQLite ledger of conversion jobs across runs so a
// user can see what was converted, skipped or failed, and when.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Status values for history records.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
	StatusDryRun  = "dry-run"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT    NOT NULL,
	input_path    TEXT    NOT NULL,
	output_path   TEXT    NOT NULL,
	profile       TEXT    NOT NULL,
	status        TEXT    NOT NULL,
	reason        TEXT    NOT NULL DEFAULT '',
	input_bytes   INTEGER NOT NULL DEFAULT 0,
	output_bytes  INTEGER NOT NULL DEFAULT 0,
	elapsed_ms    INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_run ON conversions(run_id);
`

// Entry is one recorded job.
type Entry struct {
	ID          int64
	RunID       string
	InputPath   string
	OutputPath  string
	Profile     string
	Status      string
	Reason      string
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// Store persists history entries.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists. ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One connection: the batch is sequential, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new entry and fills in its ID and CreatedAt.
func (s *Store) Add(e *Entry) error {
	now := time.Now().UTC()
	result, err := s.db.Exec(`
		INSERT INTO conversions
			(run_id, input_path, output_path, profile, status, reason,
			 input_bytes, output_bytes, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.InputPath, e.OutputPath, e.Profile, e.Status, e.Reason,
		e.InputBytes, e.OutputBytes, e.Elapsed.Milliseconds(), now,
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

// Recent returns up to limit entries, most recent first. A limit of zero
// or less returns everything.
func (s *Store) Recent(limit int) ([]*Entry, error) {
	query := `SELECT id, run_id, input_path, output_path, profile, status, reason,
			input_bytes, output_bytes, elapsed_ms, created_at
		FROM conversions ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.query(query)
}

// ForRun returns the entries recorded under runID in insertion order.
func (s *Store) ForRun(runID string) ([]*Entry, error) {
	return s.query(`SELECT id, run_id, input_path, output_path, profile, status, reason,
			input_bytes, output_bytes, elapsed_ms, created_at
		FROM conversions WHERE run_id = ? ORDER BY id ASC`, runID)
}

func (s *Store) query(query string, args ...any) ([]*Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Entry
	for rows.Next() {
		e := &Entry{}
		var elapsedMS int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.InputPath, &e.OutputPath, &e.Profile,
			&e.Status, &e.Reason, &e.InputBytes, &e.OutputBytes, &elapsedMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return results, nil
}
