/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The evaluation
  Summary is returned exactly as the ledger package encodes it; the DTOs
  here only wrap it with archive metadata.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

TYPES:
  Runs:
    RunDTO, RunListItemDTO

  Scenarios:
    ScenarioDTO

  Errors:
    ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/json.go: Summary wire format
*/
package api

import (
	"time"

	"github.com/warp/batch-ledger/ledger"
)

// RunDTO is one archived (or dry-run) evaluation.
type RunDTO struct {
	ID            string         `json:"id,omitempty"`
	AccountNumber string         `json:"account_number"`
	CreatedAt     string         `json:"created_at"`
	DryRun        bool           `json:"dry_run,omitempty"`
	Summary       ledger.Summary `json:"summary"`
}

// RunListItemDTO is the listing view of a run.
type RunListItemDTO struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"account_number"`
	CreatedAt     string  `json:"created_at"`
	FinalBalance  *string `json:"final_balance"`
	Applied       int     `json:"applied"`
	Rejected      int     `json:"rejected"`
	Aborted       bool    `json:"aborted"`
}

// ScenarioDTO describes a built-in demo batch.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toRunDTO(run ledger.Run) RunDTO {
	return RunDTO{
		ID:            run.ID,
		AccountNumber: run.AccountNumber,
		CreatedAt:     run.CreatedAt.Format(time.RFC3339Nano),
		Summary:       run.Summary,
	}
}

func toRunListItemDTO(run ledger.Run) RunListItemDTO {
	item := RunListItemDTO{
		ID:            run.ID,
		AccountNumber: run.AccountNumber,
		CreatedAt:     run.CreatedAt.Format(time.RFC3339Nano),
		Applied:       len(run.Summary.Applied),
		Rejected:      len(run.Summary.Rejected),
		Aborted:       run.Summary.Aborted(),
	}
	if run.Summary.FinalBalance != nil {
		item.FinalBalance = strPtr(run.Summary.FinalBalance.String())
	}
	return item
}

func strPtr(s string) *string {
	return &s
}
