package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/batch-ledger/ledger"
	"github.com/warp/batch-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id, accountNumber string, at time.Time) ledger.Run {
	s := ledger.Evaluate(ledger.AccountDescriptor{
		AccountNumber:  accountNumber,
		AccountHolder:  "John Doe",
		Currency:       "USD",
		OpeningBalance: ledger.String("1000"),
		Transactions: []ledger.TransactionRequest{
			{Type: "Deposit", Amount: ledger.String("500")},
			{Type: "Withdraw", Amount: ledger.String("2000")},
		},
	})
	return ledger.Run{ID: id, AccountNumber: s.AccountNumber, Summary: s, CreatedAt: at}
}

// =============================================================================
// TESTS
// =============================================================================

func TestStore_SaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 9, 30, 0, 123, time.UTC)

	require.NoError(t, store.SaveRun(ctx, sampleRun("run-1", "123456789", at)))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "123456789", got.AccountNumber)
	assert.True(t, got.CreatedAt.Equal(at))

	require.NotNil(t, got.Summary.FinalBalance)
	assert.Equal(t, "1500", got.Summary.FinalBalance.String())
	require.Len(t, got.Summary.Applied, 1)
	assert.Equal(t, ledger.TypeDeposit, got.Summary.Applied[0].Kind)
	require.Len(t, got.Summary.Rejected, 1)
	assert.Equal(t, ledger.ReasonInsufficientBalance, got.Summary.Rejected[0].Reason)
}

func TestStore_GetRun_NotFound(t *testing.T) {
	_, err := newTestStore(t).GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrRunNotFound)
}

func TestStore_SaveRun_Duplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	run := sampleRun("run-1", "A", time.Now())

	require.NoError(t, store.SaveRun(ctx, run))
	assert.ErrorIs(t, store.SaveRun(ctx, run), ledger.ErrDuplicateRun)
}

func TestStore_SaveRun_AbortedSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := ledger.Evaluate(ledger.AccountDescriptor{OpeningBalance: ledger.String("abc")})
	require.NoError(t, store.SaveRun(ctx, ledger.NewRun(s, time.Now())))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Summary.Aborted())
	assert.True(t, runs[0].Summary.Rejected[0].Synthetic())
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, sampleRun("b", "X", base.Add(2*time.Minute))))
	require.NoError(t, store.SaveRun(ctx, sampleRun("a", "X", base.Add(1*time.Minute))))
	require.NoError(t, store.SaveRun(ctx, sampleRun("c", "Y", base.Add(3*time.Minute))))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "c", limited[0].ID)

	byAccount, err := store.ListRunsByAccount(ctx, "X", 0)
	require.NoError(t, err)
	require.Len(t, byAccount, 2)
	assert.Equal(t, "b", byAccount[0].ID)
}
