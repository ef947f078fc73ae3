/*
json.go - Wire format for descriptors, requests and summaries

DECODING:
  Decoding an AccountDescriptor only fails when the document is not a JSON
  object. Everything inside it is carried into evaluation as-is so the
  evaluator, not the decoder, decides what is wrong:
    - "openingBalance" (or the legacy "initialBalance") stays a raw Value
    - "transactions" that is absent, null or not an array becomes nil
    - an entry that is not an object, or whose "type" is not a string,
      becomes a request with Fault set

ENCODING:
  Requests encode as their original fields. Applied transactions add
  "index" and "balanceAfter" to those fields. Rejected transactions nest
  the request under "transaction" (null for account-level rejections).
*/
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// ACCOUNT DESCRIPTOR
// =============================================================================

type accountJSON struct {
	AccountNumber  json.RawMessage `json:"accountNumber"`
	AccountHolder  json.RawMessage `json:"accountHolder"`
	Currency       json.RawMessage `json:"currency"`
	OpeningBalance json.RawMessage `json:"openingBalance"`
	InitialBalance json.RawMessage `json:"initialBalance"`
	Transactions   json.RawMessage `json:"transactions"`
}

// UnmarshalJSON decodes an account document. See the file comment for what
// is tolerated.
func (a *AccountDescriptor) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("account descriptor must be a JSON object")
	}

	var raw accountJSON
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("decode account descriptor: %w", err)
	}

	*a = AccountDescriptor{
		AccountNumber: metadataString(raw.AccountNumber),
		AccountHolder: metadataString(raw.AccountHolder),
		Currency:      metadataString(raw.Currency),
	}

	balance := raw.OpeningBalance
	if isNull(balance) {
		balance = raw.InitialBalance
	}
	if !isNull(balance) {
		a.OpeningBalance = Value{raw: append(json.RawMessage(nil), balance...)}
	}

	var entries []json.RawMessage
	if !isNull(raw.Transactions) && json.Unmarshal(raw.Transactions, &entries) == nil && entries != nil {
		a.Transactions = make([]TransactionRequest, len(entries))
		for i, e := range entries {
			_ = a.Transactions[i].UnmarshalJSON(e)
		}
	}
	return nil
}

// MarshalJSON encodes the descriptor in the same shape UnmarshalJSON reads.
func (a AccountDescriptor) MarshalJSON() ([]byte, error) {
	out := struct {
		AccountNumber  string               `json:"accountNumber,omitempty"`
		AccountHolder  string               `json:"accountHolder,omitempty"`
		Currency       string               `json:"currency,omitempty"`
		OpeningBalance Value                `json:"openingBalance"`
		Transactions   []TransactionRequest `json:"transactions"`
	}{a.AccountNumber, a.AccountHolder, a.Currency, a.OpeningBalance, a.Transactions}
	return json.Marshal(out)
}

// metadataString reads identity fields leniently: strings as-is, numbers as
// their literal text, anything else as empty.
func metadataString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// =============================================================================
// TRANSACTION REQUEST
// =============================================================================

// UnmarshalJSON never fails: malformed entries are recorded in Fault.
func (r *TransactionRequest) UnmarshalJSON(b []byte) error {
	*r = TransactionRequest{}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil || obj == nil {
		r.entry = append(json.RawMessage(nil), bytes.TrimSpace(b)...)
		r.Fault = fmt.Errorf("%w: entry is not an object", ErrMalformedTransaction)
		return nil
	}

	for k, v := range obj {
		v = append(json.RawMessage(nil), v...)
		switch k {
		case "type":
			if isNull(v) {
				continue
			}
			if err := json.Unmarshal(v, &r.Type); err != nil {
				r.setField(k, v)
				r.Fault = fmt.Errorf("%w: type must be a string", ErrMalformedTransaction)
			}
		case "amount":
			r.Amount = Value{raw: v}
		default:
			r.setField(k, v)
		}
	}
	return nil
}

func (r *TransactionRequest) setField(k string, v json.RawMessage) {
	if r.Fields == nil {
		r.Fields = make(map[string]json.RawMessage)
	}
	r.Fields[k] = v
}

// MarshalJSON re-emits the request's fields.
func (r TransactionRequest) MarshalJSON() ([]byte, error) {
	if len(r.entry) > 0 {
		if json.Valid(r.entry) {
			return append([]byte(nil), r.entry...), nil
		}
		return json.Marshal(string(r.entry))
	}
	obj, err := r.object()
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

func (r TransactionRequest) object() (map[string]json.RawMessage, error) {
	obj := make(map[string]json.RawMessage, len(r.Fields)+2)
	for k, v := range r.Fields {
		obj[k] = v
	}
	if _, ok := obj["type"]; !ok {
		t, err := json.Marshal(r.Type)
		if err != nil {
			return nil, err
		}
		obj["type"] = t
	}
	amount, err := r.Amount.MarshalJSON()
	if err != nil {
		return nil, err
	}
	obj["amount"] = amount
	return obj, nil
}

// =============================================================================
// APPLIED TRANSACTION
// =============================================================================

// MarshalJSON flattens the request's fields and adds index and balanceAfter.
func (a AppliedTransaction) MarshalJSON() ([]byte, error) {
	obj, err := a.Transaction.object()
	if err != nil {
		return nil, err
	}
	index, _ := json.Marshal(a.Index)
	after, err := json.Marshal(a.BalanceAfter)
	if err != nil {
		return nil, err
	}
	obj["index"] = index
	obj["balanceAfter"] = after
	return json.Marshal(obj)
}

// UnmarshalJSON reverses MarshalJSON, re-deriving Kind and Amount from the
// request.
func (a *AppliedTransaction) UnmarshalJSON(b []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("decode applied transaction: %w", err)
	}

	*a = AppliedTransaction{}
	if err := json.Unmarshal(obj["index"], &a.Index); err != nil {
		return fmt.Errorf("decode applied transaction index: %w", err)
	}
	if err := json.Unmarshal(obj["balanceAfter"], &a.BalanceAfter); err != nil {
		return fmt.Errorf("decode applied transaction balance: %w", err)
	}
	delete(obj, "index")
	delete(obj, "balanceAfter")

	rest, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	_ = a.Transaction.UnmarshalJSON(rest)
	a.Kind = NormalizeType(a.Transaction.Type)
	a.Amount, _ = ParseDecimal(a.Transaction.Amount)
	return nil
}
