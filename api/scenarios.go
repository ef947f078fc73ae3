/*
scenarios.go - Built-in demo batches

PURPOSE:
  Provides ready-made account documents that exercise each path through
  the evaluator. Running a scenario evaluates it exactly like a POSTed
  batch (observers fire, the run is archived).

AVAILABLE SCENARIOS:
  mixed-batch:          Deposits, withdrawals and every rejection reason
  invalid-balance:      Non-numeric opening balance aborts the batch
  empty-batch:          Zero balance, no transactions
  exact-withdrawal:     Withdrawal of the whole balance
  missing-transactions: No transaction list at all

USAGE VIA API:
  GET  /api/scenarios
  POST /api/scenarios/mixed-batch/run

ADDING NEW SCENARIOS:
  Add an entry to 'scenarios' with its account document.
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/batch-ledger/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	document string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-batch",
			Name:        "Mixed Batch",
			Description: "Deposits and withdrawals with insufficient funds, a negative amount, an unknown type and missing types",
		},
		document: `{
			"accountNumber": "123456789",
			"accountHolder": "John Doe",
			"currency": "USD",
			"initialBalance": "1000",
			"transactions": [
				{"type": "Deposit", "amount": "500"},
				{"type": "Withdraw", "amount": "2000"},
				{"type": "Withdraw", "amount": "300"},
				{"type": "Deposit", "amount": "-100"},
				{"type": "Transfer", "amount": "100"},
				{"type": "", "amount": "50"},
				{"amount": "100"}
			]
		}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "invalid-balance",
			Name:        "Invalid Opening Balance",
			Description: "A non-numeric opening balance aborts the whole batch",
		},
		document: `{
			"accountNumber": "987654321",
			"accountHolder": "Jane Roe",
			"currency": "EUR",
			"openingBalance": "abc",
			"transactions": [{"type": "deposit", "amount": "10"}]
		}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "empty-batch",
			Name:        "Empty Batch",
			Description: "Zero opening balance and no transactions",
		},
		document: `{"accountNumber": "000000001", "openingBalance": 0, "transactions": []}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "exact-withdrawal",
			Name:        "Exact Withdrawal",
			Description: "Withdrawing the whole balance leaves exactly zero",
		},
		document: `{"accountNumber": "000000002", "openingBalance": 100, "transactions": [{"type": "withdraw", "amount": 100}]}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "missing-transactions",
			Name:        "Missing Transactions",
			Description: "An account with no transaction list is rejected as a whole",
		},
		document: `{"accountNumber": "000000003", "openingBalance": 100}`,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// Account decodes the scenario's account document.
func (s scenario) Account() (ledger.AccountDescriptor, error) {
	var account ledger.AccountDescriptor
	err := json.Unmarshal([]byte(s.document), &account)
	return account, err
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the built-in scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunScenario evaluates a built-in scenario and archives the run.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	account, err := s.Account()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.evaluateAndRespond(w, r, account, false)
}
