package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_PanicIsConfinedToOneTransaction(t *testing.T) {
	// GIVEN: A check that blows up on the second request only
	s := Summary{Applied: []AppliedTransaction{}, Rejected: []RejectedTransaction{}}
	b := &batch{
		summary: &s,
		balance: decimal.NewFromInt(10),
		check: func(balance decimal.Decimal, tx TransactionRequest) outcome {
			if tx.Type == "boom" {
				panic(errors.New("nested structure exploded"))
			}
			return check(balance, tx)
		},
	}

	// WHEN: Processing three requests
	b.process(0, TransactionRequest{Type: "deposit", Amount: Int(5)})
	b.process(1, TransactionRequest{Type: "boom", Amount: Int(5)})
	b.process(2, TransactionRequest{Type: "withdraw", Amount: Int(3)})

	// THEN: The panic became a rejection and the batch carried on
	require.Len(t, s.Applied, 2)
	require.Len(t, s.Rejected, 1)
	assert.Equal(t, CodeSystemError, s.Rejected[0].Code)
	assert.Equal(t, "System Error: nested structure exploded", s.Rejected[0].Reason)
	assert.Equal(t, 1, *s.Rejected[0].Index)
	assert.True(t, decimal.NewFromInt(12).Equal(b.balance))
}

func TestBatch_NonErrorPanicValue(t *testing.T) {
	s := Summary{}
	b := &batch{
		summary: &s,
		check: func(decimal.Decimal, TransactionRequest) outcome {
			panic("bad entry")
		},
	}

	b.process(0, TransactionRequest{})

	require.Len(t, s.Rejected, 1)
	assert.Equal(t, "System Error: bad entry", s.Rejected[0].Reason)
	assert.True(t, b.balance.IsZero())
}
