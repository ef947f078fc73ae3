/*
value.go - Numeric-like inputs and their explicit parsing

PURPOSE:
  Balances and amounts arrive the way callers happen to send them: a JSON
  number, a string holding a number, or something that is not a number at
  all. Value keeps the raw form untouched so it can be echoed back in the
  audit trail, and ParseDecimal turns it into a decimal.Decimal or a typed
  *ParseError. Nothing is coerced silently.

ACCEPTED FORMS:
  1000          JSON number
  "1000.50"     numeric string (surrounding whitespace ignored)
  "1e3"         exponent notation (number or string)

REJECTED FORMS:
  absent, null, "", "abc", true, {}, [], "NaN", "Infinity"

PRECISION:
  JSON numbers are parsed from their literal text, never through float64,
  so "0.1" stays exactly 0.1.

RANGE:
  At most MaxDigits significant digits and an exponent within
  +/-MaxExponent. Anything larger fails with ErrOutOfRange.

SEE ALSO:
  - errors.go: ParseError and the sentinel causes
  - evaluator.go: Consumes ParseDecimal in the validation chain
*/
package ledger

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALUE - Raw numeric-like input
// =============================================================================

// Value is a numeric-like input exactly as supplied. The zero Value is absent.
type Value struct {
	raw json.RawMessage
}

// String builds a Value from a string, as if the caller had sent "s".
func String(s string) Value {
	b, _ := json.Marshal(s)
	return Value{raw: b}
}

// Int builds a Value from an integer JSON number.
func Int(n int64) Value {
	return Value{raw: json.RawMessage(decimal.NewFromInt(n).String())}
}

// Decimal builds a Value from a decimal JSON number.
func Decimal(d decimal.Decimal) Value {
	return Value{raw: json.RawMessage(d.String())}
}

// Raw builds a Value from arbitrary JSON text. Invalid JSON is kept as-is and
// will fail to parse.
func Raw(text string) Value {
	if text == "" {
		return Value{}
	}
	return Value{raw: json.RawMessage(text)}
}

// IsAbsent reports whether no value (or JSON null) was supplied.
func (v Value) IsAbsent() bool {
	t := bytes.TrimSpace(v.raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// String returns the value as the caller supplied it, unquoted for strings.
func (v Value) String() string {
	if v.IsAbsent() {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.raw, &s); err == nil {
		return s
	}
	return string(v.raw)
}

// MarshalJSON echoes the raw input, or null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsAbsent():
		return []byte("null"), nil
	case !json.Valid(v.raw):
		return json.Marshal(string(v.raw))
	}
	return append([]byte(nil), v.raw...), nil
}

// UnmarshalJSON keeps a private copy of the raw bytes. It never fails.
func (v *Value) UnmarshalJSON(b []byte) error {
	v.raw = append(json.RawMessage(nil), b...)
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// Range limits for parsed values.
const (
	MaxDigits   = 64
	MaxExponent = 64

	// maxInputLen bounds the text handed to the decimal parser.
	maxInputLen = 256
)

// ParseDecimal converts a Value to a decimal. Failures are *ParseError values
// wrapping ErrMissingValue, ErrNotNumeric or ErrOutOfRange.
func ParseDecimal(v Value) (decimal.Decimal, error) {
	if v.IsAbsent() {
		return decimal.Zero, &ParseError{Input: "", Err: ErrMissingValue}
	}

	raw := bytes.TrimSpace(v.raw)
	text := string(raw)

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, &ParseError{Input: text, Err: ErrNotNumeric}
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return decimal.Zero, &ParseError{Input: s, Err: ErrMissingValue}
		}
	case c == '-' || (c >= '0' && c <= '9'):
		if !json.Valid(raw) {
			return decimal.Zero, &ParseError{Input: text, Err: ErrNotNumeric}
		}
	default:
		return decimal.Zero, &ParseError{Input: text, Err: ErrNotNumeric}
	}

	if len(text) > maxInputLen {
		return decimal.Zero, &ParseError{Input: text[:maxInputLen] + "...", Err: ErrOutOfRange}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, &ParseError{Input: text, Err: ErrNotNumeric}
	}
	if e := d.Exponent(); e > MaxExponent || e < -MaxExponent || d.NumDigits() > MaxDigits {
		return decimal.Zero, &ParseError{Input: text, Err: ErrOutOfRange}
	}
	return d, nil
}
