// Package history keeps a local SQLite log of settled session operations.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Outcome values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// Entry is one recorded transition.
type Entry struct {
	ID            int64         `json:"id"`
	Operation     string        `json:"operation"`
	Outcome       string        `json:"outcome"`
	ErrorKind     string        `json:"error_kind,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	Authenticated bool          `json:"authenticated"`
	UserID        string        `json:"user_id,omitempty"`
	Email         string        `json:"email,omitempty"`
	Onboarding    string        `json:"onboarding,omitempty"`
	Version       uint64        `json:"version"`
	Elapsed       time.Duration `json:"elapsed"`
	RecordedAt    time.Time     `json:"recorded_at"`
}

// Store persists transitions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the history database at path, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record inserts entry and returns its ID. A zero RecordedAt is set to now.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(entry.Operation) == "" {
		return 0, fmt.Errorf("operation is required")
	}
	if entry.Outcome != OutcomeSuccess && entry.Outcome != OutcomeFailure {
		return 0, fmt.Errorf("invalid outcome %q", entry.Outcome)
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO session_transitions (
		   operation,
		   outcome,
		   error_kind,
		   error_message,
		   authenticated,
		   user_id,
		   email,
		   onboarding,
		   version,
		   elapsed_ms,
		   recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Operation,
		entry.Outcome,
		entry.ErrorKind,
		entry.ErrorMessage,
		entry.Authenticated,
		entry.UserID,
		entry.Email,
		entry.Onboarding,
		int64(entry.Version),
		entry.Elapsed.Milliseconds(),
		toMillis(entry.RecordedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("record transition: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, operation, outcome, error_kind, error_message, authenticated,
		        user_id, email, onboarding, version, elapsed_ms, recorded_at
		   FROM session_transitions
		  ORDER BY recorded_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			version    int64
			elapsedMS  int64
			recordedAt int64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Operation,
			&entry.Outcome,
			&entry.ErrorKind,
			&entry.ErrorMessage,
			&entry.Authenticated,
			&entry.UserID,
			&entry.Email,
			&entry.Onboarding,
			&version,
			&elapsedMS,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		entry.Version = uint64(version)
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entry.RecordedAt = fromMillis(recordedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep entries and reports how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM session_transitions
		  WHERE id NOT IN (
		    SELECT id FROM session_transitions
		     ORDER BY recorded_at DESC, id DESC
		     LIMIT ?
		  )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune transitions: %w", err)
	}
	return res.RowsAffected()
}
