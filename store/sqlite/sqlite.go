/*
Package sqlite provides a SQLite-backed ledger.RunStore.

PURPOSE:
  Archives evaluation runs so operators can look up what a batch did after
  the fact. The archive is an audit trail only: nothing here is ever used
  as an opening balance for another evaluation.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on evaluation_runs
  - No DELETE statements except Reset (dev only)

KEY TABLES:
  evaluation_runs: One row per evaluation, Summary stored as JSON with a
                   few denormalized columns for listing

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, like the SQLite writer lock would.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/run.go: RunStore interface
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/batch-ledger/ledger"
)

// Store implements ledger.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ ledger.RunStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Evaluation runs (append-only audit archive)
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id TEXT PRIMARY KEY,
		account_number TEXT NOT NULL,
		aborted INTEGER NOT NULL,
		applied_count INTEGER NOT NULL,
		rejected_count INTEGER NOT NULL,
		final_balance TEXT,
		summary_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created_at
		ON evaluation_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_evaluation_runs_account
		ON evaluation_runs(account_number, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUNSTORE IMPLEMENTATION
// =============================================================================

// SaveRun persists a run. Append-only.
func (s *Store) SaveRun(ctx context.Context, run ledger.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	var finalBalance sql.NullString
	if run.Summary.FinalBalance != nil {
		finalBalance = sql.NullString{String: run.Summary.FinalBalance.String(), Valid: true}
	}

	query := `
		INSERT INTO evaluation_runs (id, account_number, aborted, applied_count,
			rejected_count, final_balance, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.AccountNumber, run.Summary.Aborted(),
		len(run.Summary.Applied), len(run.Summary.Rejected),
		finalBalance, string(summaryJSON), formatTime(run.CreatedAt),
	)
	if isUniqueConstraintError(err) {
		return ledger.ErrDuplicateRun
	}
	return err
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (ledger.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_number, summary_json, created_at
		FROM evaluation_runs WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Run{}, ledger.ErrRunNotFound
	}
	return run, err
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]ledger.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_number, summary_json, created_at
		FROM evaluation_runs
		ORDER BY created_at DESC, rowid DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// ListRunsByAccount returns runs for one account number, newest first.
func (s *Store) ListRunsByAccount(ctx context.Context, accountNumber string, limit int) ([]ledger.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_number, summary_json, created_at
		FROM evaluation_runs
		WHERE account_number = ?
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{accountNumber}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]ledger.Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []ledger.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ledger.Run, error) {
	var run ledger.Run
	var summaryJSON, createdAt string
	if err := row.Scan(&run.ID, &run.AccountNumber, &summaryJSON, &createdAt); err != nil {
		return ledger.Run{}, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return ledger.Run{}, fmt.Errorf("failed to decode summary for run %s: %w", run.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return ledger.Run{}, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}

// Helper functions

// formatTime uses a fixed-width layout so created_at sorts as text.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
