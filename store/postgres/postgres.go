// Package postgres provides a PostgreSQL-backed ledger.RunStore.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/warp/batch-ledger/ledger"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Store implements ledger.RunStore on PostgreSQL. Concurrency is left to the
// database.
type Store struct {
	db *sql.DB
}

var _ ledger.RunStore = (*Store)(nil)

// Open connects to dsn, checks the connection and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id TEXT PRIMARY KEY,
		account_number TEXT NOT NULL,
		aborted BOOLEAN NOT NULL,
		applied_count INTEGER NOT NULL,
		rejected_count INTEGER NOT NULL,
		final_balance NUMERIC,
		summary_json TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		seq BIGSERIAL
	);
	CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created_at
		ON evaluation_runs (created_at DESC, seq DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) SaveRun(ctx context.Context, run ledger.Run) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	var finalBalance sql.NullString
	if run.Summary.FinalBalance != nil {
		finalBalance = sql.NullString{String: run.Summary.FinalBalance.String(), Valid: true}
	}

	const query = `
		INSERT INTO evaluation_runs (id, account_number, aborted, applied_count,
			rejected_count, final_balance, summary_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.AccountNumber, run.Summary.Aborted(),
		len(run.Summary.Applied), len(run.Summary.Rejected),
		finalBalance, string(summaryJSON), run.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ledger.ErrDuplicateRun
	}
	return err
}

func (s *Store) GetRun(ctx context.Context, id string) (ledger.Run, error) {
	const query = `
		SELECT id, account_number, summary_json, created_at
		FROM evaluation_runs WHERE id = $1`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Run{}, ledger.ErrRunNotFound
	}
	return run, err
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]ledger.Run, error) {
	query := `
		SELECT id, account_number, summary_json, created_at
		FROM evaluation_runs
		ORDER BY created_at DESC, seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

func (s *Store) ListRunsByAccount(ctx context.Context, accountNumber string, limit int) ([]ledger.Run, error) {
	query := `
		SELECT id, account_number, summary_json, created_at
		FROM evaluation_runs
		WHERE account_number = $1
		ORDER BY created_at DESC, seq DESC`
	args := []any{accountNumber}
	if limit > 0 {
		query += ` LIMIT $2`
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
	var summaryJSON string
	if err := row.Scan(&run.ID, &run.AccountNumber, &summaryJSON, &run.CreatedAt); err != nil {
		return ledger.Run{}, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return ledger.Run{}, fmt.Errorf("failed to decode summary for run %s: %w", run.ID, err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return run, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
