/*
scenarios_test.go - Tests for the built-in demo batches

Each scenario is run through the HTTP API and its summary checked
against the hand-computed outcome.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/batch-ledger/ledger"
)

func runScenario(t *testing.T, router http.Handler, id string) RunDTO {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/"+id+"/run", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeRun(t, rec)
}

func TestScenario_List(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list []ScenarioDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, len(scenarios))
	for _, s := range list {
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Description)
	}
}

func TestScenario_MixedBatch(t *testing.T) {
	// GIVEN: 1000 opening balance with seven mixed entries
	h, router := setupTestHandler(t)

	// WHEN: The scenario is run
	dto := runScenario(t, router, "mixed-batch")

	// THEN: Two entries apply and five are rejected, in input order
	s := dto.Summary
	assert.Equal(t, "1000", s.OpeningBalance.String())
	assert.Equal(t, "1200", s.FinalBalance.String())

	require.Len(t, s.Applied, 2)
	assert.Equal(t, "1500", s.Applied[0].BalanceAfter.String())
	assert.Equal(t, "1200", s.Applied[1].BalanceAfter.String())

	reasons := make([]string, len(s.Rejected))
	for i, r := range s.Rejected {
		reasons[i] = r.Reason
	}
	assert.Equal(t, []string{
		ledger.ReasonInsufficientBalance,
		ledger.ReasonNonPositiveAmount,
		ledger.ReasonUnknownType,
		ledger.ReasonTypeMissing,
		ledger.ReasonTypeMissing,
	}, reasons)

	// AND: The run is archived
	_, err := h.Store.GetRun(context.Background(), dto.ID)
	assert.NoError(t, err)
}

func TestScenario_InvalidBalance(t *testing.T) {
	_, router := setupTestHandler(t)

	s := runScenario(t, router, "invalid-balance").Summary

	assert.True(t, s.Aborted())
	assert.Nil(t, s.OpeningBalance)
	assert.Nil(t, s.FinalBalance)
	require.Len(t, s.Rejected, 1)
	assert.Equal(t, ledger.ReasonInvalidOpeningBalance, s.Rejected[0].Reason)
}

func TestScenario_EmptyBatch(t *testing.T) {
	_, router := setupTestHandler(t)

	s := runScenario(t, router, "empty-batch").Summary

	assert.Equal(t, "0", s.FinalBalance.String())
	assert.Empty(t, s.Applied)
	assert.Empty(t, s.Rejected)
}

func TestScenario_ExactWithdrawal(t *testing.T) {
	_, router := setupTestHandler(t)

	s := runScenario(t, router, "exact-withdrawal").Summary

	assert.Equal(t, "0", s.FinalBalance.String())
	require.Len(t, s.Applied, 1)
	assert.Empty(t, s.Rejected)
}

func TestScenario_MissingTransactions(t *testing.T) {
	_, router := setupTestHandler(t)

	s := runScenario(t, router, "missing-transactions").Summary

	assert.Equal(t, "100", s.OpeningBalance.String())
	assert.Nil(t, s.FinalBalance)
	require.Len(t, s.Rejected, 1)
	assert.Equal(t, ledger.ReasonTransactionsMissing, s.Rejected[0].Reason)
}

func TestScenario_NotFound(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/nope/run", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			_, err := s.Account()
			assert.NoError(t, err)
		})
	}
}
