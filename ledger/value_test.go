package ledger_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/batch-ledger/ledger"
)

func TestParseDecimal_Accepts(t *testing.T) {
	cases := []struct {
		want  string
		value ledger.Value
	}{
		{"1000", ledger.Raw(`1000`)},
		{"1000.5", ledger.String("1000.50")},
		{"12", ledger.String("  12  ")},
		{"-3", ledger.Raw(`-3`)},
		{"1000", ledger.Raw(`1e3`)},
		{"0.1", ledger.Raw(`0.1`)},
		{"42", ledger.Int(42)},
		{"7.25", ledger.Decimal(decimal.RequireFromString("7.25"))},
		{"1e64", ledger.Raw(`1e64`)},
		{"1e-64", ledger.String("1e-64")},
	}

	for _, tc := range cases {
		got, err := ledger.ParseDecimal(tc.value)
		require.NoError(t, err, tc.value.String())
		assert.Truef(t, decimal.RequireFromString(tc.want).Equal(got), "%s: got %s", tc.want, got)
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		value ledger.Value
		cause error
	}{
		{"absent", ledger.Value{}, ledger.ErrMissingValue},
		{"null", ledger.Raw(`null`), ledger.ErrMissingValue},
		{"empty string", ledger.String(""), ledger.ErrMissingValue},
		{"blank string", ledger.String("   "), ledger.ErrMissingValue},
		{"word", ledger.String("abc"), ledger.ErrNotNumeric},
		{"NaN", ledger.String("NaN"), ledger.ErrNotNumeric},
		{"Infinity", ledger.String("Infinity"), ledger.ErrNotNumeric},
		{"bool", ledger.Raw(`true`), ledger.ErrNotNumeric},
		{"object", ledger.Raw(`{}`), ledger.ErrNotNumeric},
		{"array", ledger.Raw(`[1]`), ledger.ErrNotNumeric},
		{"trailing junk", ledger.Raw(`12abc`), ledger.ErrNotNumeric},
		{"tiny exponent", ledger.Raw(`1e-20000000`), ledger.ErrOutOfRange},
		{"tiny exponent string", ledger.String("1e-100000"), ledger.ErrOutOfRange},
		{"huge exponent", ledger.Raw(`1e65`), ledger.ErrOutOfRange},
		{"too many digits", ledger.String(strings.Repeat("9", ledger.MaxDigits+1)), ledger.ErrOutOfRange},
		{"too long", ledger.Raw(strings.Repeat("1", 10000)), ledger.ErrOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.ParseDecimal(tc.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.cause)

			var pe *ledger.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestValue_JSONEchoesInput(t *testing.T) {
	var v struct {
		A ledger.Value `json:"a"`
		B ledger.Value `json:"b"`
		C ledger.Value `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "500", "b": 0.10}`), &v))

	assert.Equal(t, "500", v.A.String())
	assert.Equal(t, "0.10", v.B.String())
	assert.True(t, v.C.IsAbsent())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "500", "b": 0.10, "c": null}`, string(out))
}
