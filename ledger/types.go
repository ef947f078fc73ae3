/*
Package ledger evaluates a batch of deposits and withdrawals against an
account's opening balance.

PURPOSE:
  Given an account descriptor and an ordered list of transaction requests,
  decide which requests are valid, apply the valid ones to a running
  balance, and return a Summary that splits the batch into applied and
  rejected entries. Every rejected entry carries a reason.

KEY CONCEPTS IN THIS FILE (types.go):
  - AccountDescriptor: Account identity, opening balance and the batch
  - TransactionRequest: One candidate transaction, passthrough fields kept
  - AppliedTransaction: A request that moved the balance, with BalanceAfter
  - RejectedTransaction: A request (or the whole batch) that did not
  - Summary: The complete, order-preserving result of one evaluation

DESIGN PRINCIPLES:
  1. Total: Evaluate never panics and never returns an error
  2. Precision: Uses decimal.Decimal for every amount and balance
  3. Input order: Requests are evaluated exactly in the order given
  4. Isolation: One bad entry never stops the rest of the batch

USAGE:
  summary := ledger.Evaluate(ledger.AccountDescriptor{
      AccountNumber:  "123456789",
      OpeningBalance: ledger.String("1000"),
      Transactions: []ledger.TransactionRequest{
          {Type: "Deposit", Amount: ledger.String("500")},
      },
  })

SEE ALSO:
  - evaluator.go: The validation chain and balance application
  - value.go: Numeric-like inputs
  - json.go: Wire format
*/
package ledger

import (
	"encoding/json"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
)

// Unknown stands in for missing account metadata.
const Unknown = "UNKNOWN"

// =============================================================================
// INPUT
// =============================================================================

// AccountDescriptor is the immutable input to one evaluation.
//
// A nil Transactions slice means the batch was not supplied as a sequence;
// an empty, non-nil slice is a valid batch with nothing in it.
type AccountDescriptor struct {
	AccountNumber  string
	AccountHolder  string
	Currency       string
	OpeningBalance Value
	Transactions   []TransactionRequest
}

// TransactionType is a normalized transaction type.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
)

// NormalizeType folds a raw type to its canonical lower-case form.
func NormalizeType(raw string) TransactionType {
	return TransactionType(strings.ToLower(strings.TrimSpace(raw)))
}

// TransactionRequest is one candidate transaction.
type TransactionRequest struct {
	Type   string
	Amount Value

	// Fields holds every other field of the request, verbatim, for audit.
	Fields map[string]json.RawMessage

	// Fault is set when the entry could not be decoded into a request.
	Fault error

	// entry keeps a non-object entry exactly as received.
	entry json.RawMessage
}

func (r TransactionRequest) clone() TransactionRequest {
	r.Fields = maps.Clone(r.Fields)
	r.entry = append(json.RawMessage(nil), r.entry...)
	return r
}

// =============================================================================
// OUTPUT
// =============================================================================

// AppliedTransaction is a request that passed validation and moved the balance.
type AppliedTransaction struct {
	Transaction  TransactionRequest
	Kind         TransactionType
	Amount       decimal.Decimal
	Index        int
	BalanceAfter decimal.Decimal
}

// Delta is the signed change this transaction made to the balance.
func (a AppliedTransaction) Delta() decimal.Decimal {
	if a.Kind == TypeWithdraw {
		return a.Amount.Neg()
	}
	return a.Amount
}

// RejectedTransaction is a request that did not pass validation. Transaction
// and Index are nil for an account-level (synthetic) rejection.
type RejectedTransaction struct {
	Transaction *TransactionRequest `json:"transaction"`
	Index       *int                `json:"index"`
	Code        RejectionCode       `json:"code"`
	Reason      string              `json:"reason"`
}

// Synthetic reports whether the rejection stands in for the whole batch.
func (r RejectedTransaction) Synthetic() bool {
	return r.Transaction == nil
}

// Summary is the complete result of one evaluation.
//
// INVARIANTS:
//   - FinalBalance = OpeningBalance + deposits applied - withdrawals applied
//   - FinalBalance equals the BalanceAfter of the last applied transaction
//   - Every input request appears in exactly one of Applied or Rejected,
//     unless the batch was aborted (FinalBalance == nil)
type Summary struct {
	AccountNumber  string                `json:"accountNumber"`
	AccountHolder  string                `json:"accountHolder"`
	Currency       string                `json:"currency"`
	OpeningBalance *decimal.Decimal      `json:"openingBalance"`
	FinalBalance   *decimal.Decimal      `json:"finalBalance"`
	Applied        []AppliedTransaction  `json:"appliedTransactions"`
	Rejected       []RejectedTransaction `json:"rejectedTransactions"`
}

// Aborted reports whether an account-level failure stopped the batch.
func (s Summary) Aborted() bool {
	return s.FinalBalance == nil
}

// TotalDeposited sums the amounts of applied deposits.
func (s Summary) TotalDeposited() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Applied {
		if a.Kind == TypeDeposit {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// TotalWithdrawn sums the amounts of applied withdrawals.
func (s Summary) TotalWithdrawn() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Applied {
		if a.Kind == TypeWithdraw {
			total = total.Add(a.Amount)
		}
	}
	return total
}
