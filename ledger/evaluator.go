/*
evaluator.go - Validation chain and balance application

PURPOSE:
  Turns an AccountDescriptor into a Summary in a single pass. This is the
  only place the balance moves.

ALGORITHM:
  1. Default missing metadata to UNKNOWN
  2. Parse the opening balance; failure aborts the batch
  3. A nil transaction list aborts the batch
  4. Walk the requests in input order, each one isolated from the others
  5. FinalBalance = running balance

VALIDATION ORDER (first failure wins, balance untouched):
  1. Entry malformed             -> System Error: <cause>
  2. Type missing                -> Transaction type missing
  3. Amount not numeric or out   -> Invalid amount
     of range
  4. Amount <= 0                 -> Amount must be greater than zero
  5. deposit                     -> balance += amount
  6. withdraw, amount > balance  -> Insufficient balance
     withdraw                    -> balance -= amount
  7. anything else               -> Unknown transaction type

ISOLATION:
  Each request is checked by a pure function that only returns an outcome.
  A panic inside it is recovered and recorded as a System Error rejection
  for that request alone; the running balance is only written after the
  check has returned.

SEE ALSO:
  - observer.go: Evaluator, which adds observers around Evaluate
  - errors.go: Codes and reasons
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Evaluate applies a batch to an account's opening balance. It never panics,
// never returns an error and never mutates its input.
func Evaluate(account AccountDescriptor) Summary {
	s := Summary{
		AccountNumber: orUnknown(account.AccountNumber),
		AccountHolder: orUnknown(account.AccountHolder),
		Currency:      orUnknown(account.Currency),
		Applied:       []AppliedTransaction{},
		Rejected:      []RejectedTransaction{},
	}

	opening, err := ParseDecimal(account.OpeningBalance)
	if err != nil {
		s.Rejected = append(s.Rejected, RejectedTransaction{
			Code:   CodeInvalidOpeningBalance,
			Reason: ReasonInvalidOpeningBalance,
		})
		return s
	}
	s.OpeningBalance = &opening

	if account.Transactions == nil {
		s.Rejected = append(s.Rejected, RejectedTransaction{
			Code:   CodeTransactionsMissing,
			Reason: ReasonTransactionsMissing,
		})
		return s
	}

	b := &batch{summary: &s, balance: opening, check: check}
	for i, tx := range account.Transactions {
		b.process(i, tx.clone())
	}

	final := b.balance
	s.FinalBalance = &final
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// =============================================================================
// BATCH - Running state for one evaluation
// =============================================================================

type batch struct {
	summary *Summary
	balance decimal.Decimal
	check   func(balance decimal.Decimal, tx TransactionRequest) outcome
}

// outcome is the verdict on one request. A zero code means applied.
type outcome struct {
	kind    TransactionType
	amount  decimal.Decimal
	balance decimal.Decimal
	code    RejectionCode
	reason  string
}

func (b *batch) process(i int, tx TransactionRequest) {
	defer func() {
		if r := recover(); r != nil {
			b.reject(i, tx, CodeSystemError, systemReason(panicMessage(r)))
		}
	}()

	o := b.check(b.balance, tx)
	if o.code != "" {
		b.reject(i, tx, o.code, o.reason)
		return
	}

	b.balance = o.balance
	b.summary.Applied = append(b.summary.Applied, AppliedTransaction{
		Transaction:  tx,
		Kind:         o.kind,
		Amount:       o.amount,
		Index:        i,
		BalanceAfter: o.balance,
	})
}

func (b *batch) reject(i int, tx TransactionRequest, code RejectionCode, reason string) {
	index := i
	b.summary.Rejected = append(b.summary.Rejected, RejectedTransaction{
		Transaction: &tx,
		Index:       &index,
		Code:        code,
		Reason:      reason,
	})
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}

// =============================================================================
// VALIDATION CHAIN
// =============================================================================

func check(balance decimal.Decimal, tx TransactionRequest) outcome {
	if tx.Fault != nil {
		return rejected(CodeSystemError, systemReason(tx.Fault.Error()))
	}

	kind := NormalizeType(tx.Type)
	if kind == "" {
		return rejected(CodeTypeMissing, ReasonTypeMissing)
	}

	amount, err := ParseDecimal(tx.Amount)
	if err != nil {
		return rejected(CodeInvalidAmount, ReasonInvalidAmount)
	}
	if !amount.IsPositive() {
		return rejected(CodeNonPositiveAmount, ReasonNonPositiveAmount)
	}

	switch kind {
	case TypeDeposit:
		return outcome{kind: kind, amount: amount, balance: balance.Add(amount)}
	case TypeWithdraw:
		if amount.GreaterThan(balance) {
			return rejected(CodeInsufficientBalance, ReasonInsufficientBalance)
		}
		return outcome{kind: kind, amount: amount, balance: balance.Sub(amount)}
	default:
		return rejected(CodeUnknownType, ReasonUnknownType)
	}
}

func rejected(code RejectionCode, reason string) outcome {
	return outcome{code: code, reason: reason}
}
