/*
errors.go - Rejection taxonomy and error types for the evaluator

PURPOSE:
  Every rejection carries a Code (stable, machine-readable) and a Reason
  (the human-readable text operators see). Both come from the fixed table
  below; nothing else is ever emitted, except the "System Error: " prefix
  applied to unexpected per-entry faults.

ERROR CATEGORIES:
  1. Account-level - abort the whole batch (invalid opening balance,
     transactions not a sequence)
  2. Transaction-level - reject one entry, batch continues
  3. Parse errors - typed failures from ParseDecimal

SEE ALSO:
  - evaluator.go: Maps validation failures to these codes
  - value.go: Produces ParseError
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingValue is returned when a numeric field is absent, null or blank.
	ErrMissingValue = errors.New("value missing")

	// ErrNotNumeric is returned when a numeric field cannot be read as a number.
	ErrNotNumeric = errors.New("value is not numeric")

	// ErrOutOfRange is returned when a number has too many digits or too
	// large an exponent to be a balance or amount.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMalformedTransaction marks an entry that could not be decoded at all.
	ErrMalformedTransaction = errors.New("malformed transaction")

	// ErrRunNotFound is returned by run stores for an unknown run ID.
	ErrRunNotFound = errors.New("evaluation run not found")

	// ErrDuplicateRun is returned when a run ID is saved twice.
	ErrDuplicateRun = errors.New("duplicate evaluation run")
)

// ParseError reports why a Value could not be parsed as a decimal.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// REJECTION TAXONOMY
// =============================================================================

// RejectionCode is the machine-readable category of a rejection.
type RejectionCode string

const (
	CodeInvalidOpeningBalance RejectionCode = "invalid_opening_balance"
	CodeTransactionsMissing   RejectionCode = "transactions_missing"
	CodeTypeMissing           RejectionCode = "type_missing"
	CodeInvalidAmount         RejectionCode = "invalid_amount"
	CodeNonPositiveAmount     RejectionCode = "non_positive_amount"
	CodeInsufficientBalance   RejectionCode = "insufficient_balance"
	CodeUnknownType           RejectionCode = "unknown_type"
	CodeSystemError           RejectionCode = "system_error"
)

// SystemErrorPrefix starts the reason of every fault-driven rejection.
const SystemErrorPrefix = "System Error: "

const (
	ReasonInvalidOpeningBalance = SystemErrorPrefix + "Invalid initial balance"
	ReasonTransactionsMissing   = SystemErrorPrefix + "Transactions list missing"
	ReasonTypeMissing           = "Transaction type missing"
	ReasonInvalidAmount         = "Invalid amount"
	ReasonNonPositiveAmount     = "Amount must be greater than zero"
	ReasonInsufficientBalance   = "Insufficient balance"
	ReasonUnknownType           = "Unknown transaction type"
)

// IsAccountLevel reports whether the code aborts a whole batch.
func (c RejectionCode) IsAccountLevel() bool {
	return c == CodeInvalidOpeningBalance || c == CodeTransactionsMissing
}

// systemReason renders a fault as a rejection reason.
func systemReason(msg string) string {
	if msg == "" {
		msg = "unexpected failure"
	}
	return SystemErrorPrefix + msg
}
