package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"hopper/internal/config"
	"hopper/internal/queue"
)

// ErrNotFound indicates the journal holds no entry for the requested path.
var ErrNotFound = errors.New("journal entry not found")

// Entry is one journal row. Path is unique; repeated drops of the same file
// reuse the row and bump Attempts.
type Entry struct {
	ID           int64
	Path         string
	BaseName     string
	Status       queue.Status
	ErrorMessage string
	Attempts     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and prepares the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// RecordDiscovered registers a freshly observed file. A re-dropped path
// reuses its existing row: the status resets to pending and any stale error
// is cleared, while the attempt counter carries over.
func (s *Store) RecordDiscovered(ctx context.Context, path string) (*Entry, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO journal_entries (path, base_name, status, attempts, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             status = excluded.status,
             error_message = NULL,
             updated_at = excluded.updated_at`,
		path, filepath.Base(path), queue.StatusPending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("record discovered file: %w", err)
	}
	return s.GetByPath(ctx, path)
}

// MarkProcessing flags the entry as picked up by a worker and increments its
// attempt counter. Paths that bypassed discovery get a row on the fly.
func (s *Store) MarkProcessing(ctx context.Context, path string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO journal_entries (path, base_name, status, attempts, created_at, updated_at)
         VALUES (?, ?, ?, 1, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             status = excluded.status,
             attempts = journal_entries.attempts + 1,
             updated_at = excluded.updated_at`,
		path, filepath.Base(path), queue.StatusProcessing, timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

// MarkCompleted records a successful run and clears any error left over from
// an earlier failure.
func (s *Store) MarkCompleted(ctx context.Context, path string) error {
	return s.setStatus(ctx, path, queue.StatusCompleted, "")
}

// MarkFailed records a failed run together with its error message.
func (s *Store) MarkFailed(ctx context.Context, path, message string) error {
	return s.setStatus(ctx, path, queue.StatusFailed, message)
}

func (s *Store) setStatus(ctx context.Context, path string, status queue.Status, message string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE journal_entries SET status = ?, error_message = ?, updated_at = ? WHERE path = ?`,
		status, sql.NullString{String: message, Valid: message != ""}, timestamp, path,
	)
	if err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil
}

// GetByPath fetches the entry for a path, or nil when none exists.
func (s *Store) GetByPath(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE path = ?`, path)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// List returns entries most recently touched first, optionally filtered by
// status. A limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int, statuses ...queue.Status) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	args := make([]any, 0, len(statuses)+1)

	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
		query += ` WHERE status IN (` + placeholders + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY updated_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats reports how many entries sit in each status.
func (s *Store) Stats(ctx context.Context) (map[queue.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM journal_entries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[queue.Status]int)
	for rows.Next() {
		var status queue.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Clear removes all journal entries.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear journal: %w", err)
	}
	return res.RowsAffected()
}

// ClearCompleted removes only completed entries.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE status = ?`, queue.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed entries.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE status = ?`, queue.StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

const entryColumns = "id, path, base_name, status, error_message, attempts, created_at, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry           Entry
		errorMessageRaw sql.NullString
		createdAtRaw    string
		updatedAtRaw    string
	)

	if err := scanner.Scan(
		&entry.ID,
		&entry.Path,
		&entry.BaseName,
		&entry.Status,
		&errorMessageRaw,
		&entry.Attempts,
		&createdAtRaw,
		&updatedAtRaw,
	); err != nil {
		return nil, err
	}

	if errorMessageRaw.Valid {
		entry.ErrorMessage = errorMessageRaw.String
	}
	// Timestamps are always written as RFC3339Nano; a row that fails to parse
	// keeps the zero time rather than failing the whole read.
	entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtRaw)
	entry.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAtRaw)
	return &entry, nil
}
