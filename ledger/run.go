/*
run.go - Archived evaluation runs

PURPOSE:
  A Run is the audit record of one evaluation: the Summary plus an ID and a
  timestamp. Runs are append-only and are never read back as an opening
  balance; each evaluation still starts from the balance its caller gives.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory, for tests and dry runs
  - store/sqlite/sqlite.go: SQLite
  - store/postgres/postgres.go: PostgreSQL
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run is one archived evaluation.
type Run struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"account_number"`
	Summary       Summary   `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewRun wraps a Summary in a Run with a fresh ID.
func NewRun(s Summary, at time.Time) Run {
	return Run{
		ID:            uuid.NewString(),
		AccountNumber: s.AccountNumber,
		Summary:       s,
		CreatedAt:     at.UTC(),
	}
}

// RunStore persists runs. APPEND-ONLY: there is no update or delete.
type RunStore interface {
	// SaveRun persists a run. Saving an existing ID is an error.
	SaveRun(ctx context.Context, run Run) error

	// GetRun returns a run by ID, or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (Run, error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// ListRunsByAccount is ListRuns restricted to one account number.
	ListRunsByAccount(ctx context.Context, accountNumber string, limit int) ([]Run, error)
}
