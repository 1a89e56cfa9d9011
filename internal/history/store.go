// Package history keeps a SQLite record of computed fingerprints.
//
// Each record stores the key spec, the working directory it was evaluated in
// and the resulting key and hash, so a later run can tell whether the cache
// key changed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/cachekey/internal/fingerprint"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("no recorded fingerprint")

// Record is one stored fingerprint
type Record struct {
	ID               string
	Spec             string
	WorkingDirectory string
	Algorithm        fingerprint.Algorithm
	Key              string
	Hash             string
	FileCount        int
	CreatedAt        time.Time
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewStore opens (creating if needed) the history database at dbPath and
// applies pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	// busy_timeout first so later statements wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath, now: time.Now}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Record stores fp and returns the new record.
func (s *Store) Record(ctx context.Context, fp *fingerprint.Fingerprint) (*Record, error) {
	if fp == nil {
		return nil, fmt.Errorf("record fingerprint: nil fingerprint")
	}

	rec := &Record{
		ID:               uuid.NewString(),
		Spec:             fp.Spec,
		WorkingDirectory: fp.WorkingDirectory,
		Algorithm:        fp.Algorithm,
		Key:              fp.Key,
		Hash:             fp.Hash,
		FileCount:        fp.FileCount(),
		CreatedAt:        s.now().UTC(),
	}

	query := `INSERT INTO fingerprints
		(id, spec, working_directory, algorithm, key, hash, file_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Spec,
		rec.WorkingDirectory,
		string(rec.Algorithm),
		rec.Key,
		rec.Hash,
		rec.FileCount,
		rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert fingerprint: %w", err)
	}
	return rec, nil
}

const selectColumns = `SELECT id, spec, working_directory, algorithm, key, hash, file_count, created_at FROM fingerprints`

// Latest returns the most recent record for spec evaluated in workingDirectory.
// It returns ErrNotFound when there is none.
func (s *Store) Latest(ctx context.Context, spec, workingDirectory string) (*Record, error) {
	query := selectColumns + ` WHERE spec = ? AND working_directory = ? ORDER BY seq DESC LIMIT 1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, spec, workingDirectory))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest fingerprint: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, most recent first. A limit <= 0 returns all records.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := selectColumns + ` ORDER BY seq DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fingerprint row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprint rows: %w", err)
	}
	return records, nil
}

// Prune deletes records created before olderThan and returns how many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM fingerprints WHERE created_at < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old fingerprints: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var algorithm string
	err := row.Scan(
		&rec.ID,
		&rec.Spec,
		&rec.WorkingDirectory,
		&algorithm,
		&rec.Key,
		&rec.Hash,
		&rec.FileCount,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Algorithm = fingerprint.Algorithm(algorithm)
	return rec, nil
}
