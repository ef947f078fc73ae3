package report_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/batch-ledger/ledger"
	"github.com/warp/batch-ledger/report"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleSummary() ledger.Summary {
	return ledger.Evaluate(sampleSummaryInput())
}

func sampleSummaryInput() ledger.AccountDescriptor {
	return ledger.AccountDescriptor{
		AccountNumber:  "123456789",
		AccountHolder:  "John Doe",
		Currency:       "USD",
		OpeningBalance: ledger.String("1000"),
		Transactions: []ledger.TransactionRequest{
			{Type: "Deposit", Amount: ledger.String("500")},
			{Type: "Withdraw", Amount: ledger.String("2000")},
		},
	}
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestLogObserver_LogsSummary(t *testing.T) {
	logger, logs := newObservedLogger()
	o := report.NewLogObserver(logger)

	o.Observe(context.Background(), sampleSummary())

	entries := logs.All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "account summary", entries[0].Message)
	assert.Equal(t, 0, logs.FilterMessage(report.CompletedMarker).Len())

	ctx := entries[0].ContextMap()
	assert.Equal(t, "123456789", ctx["account_number"])
	assert.Equal(t, "1500", ctx["final_balance"])
	assert.EqualValues(t, 1, ctx["applied"])
	assert.EqualValues(t, 1, ctx["rejected"])

	assert.Equal(t, 1, logs.FilterMessage("transaction rejected").Len())
	assert.Equal(t, 1, logs.FilterMessage("transaction applied").Len())
}

func TestLogObserver_AbortedBatch(t *testing.T) {
	logger, logs := newObservedLogger()
	o := report.NewLogObserver(logger)

	o.Observe(context.Background(), ledger.Evaluate(ledger.AccountDescriptor{OpeningBalance: ledger.String("abc")}))

	aborted := logs.FilterMessage("batch aborted").All()
	require.Len(t, aborted, 1)
	assert.Equal(t, zapcore.ErrorLevel, aborted[0].Level)
	assert.Equal(t, string(ledger.CodeInvalidOpeningBalance), aborted[0].ContextMap()["code"])
	assert.Equal(t, 0, logs.FilterMessage("account summary").Len())
}

func TestMarkerWriter_WritesEveryRunRegardlessOfLogLevel(t *testing.T) {
	// GIVEN: A logger that drops everything below error
	var markers, logs bytes.Buffer
	logger, err := report.NewLoggerTo(&logs, "error", "production")
	require.NoError(t, err)

	e := ledger.NewEvaluator(report.NewLogObserver(logger))
	e.Completed = report.NewMarkerWriter(&markers).Completed

	// WHEN: A good batch and an aborted batch are evaluated
	e.Evaluate(context.Background(), sampleSummaryInput())
	e.Evaluate(context.Background(), ledger.AccountDescriptor{OpeningBalance: ledger.String("abc")})

	// THEN: The marker is written once per run
	assert.Equal(t, strings.Repeat(report.CompletedMarker+"\n", 2), markers.String())
	assert.Contains(t, logs.String(), "batch aborted")
	assert.NotContains(t, logs.String(), "account summary")
}

func TestLogObserver_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		report.NewLogObserver(nil).Observe(context.Background(), sampleSummary())
	})
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "===== Account Summary =====")
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "1500")
	assert.Contains(t, out, "Applied Transactions (1)")
	assert.Contains(t, out, "Rejected Transactions (1)")
	assert.Contains(t, out, "Insufficient balance")
}

func TestRender_Aborted(t *testing.T) {
	var buf bytes.Buffer
	s := ledger.Evaluate(ledger.AccountDescriptor{OpeningBalance: ledger.String("abc")})
	require.NoError(t, report.Render(&buf, s))

	assert.Contains(t, buf.String(), "(batch)")
	assert.Contains(t, buf.String(), "System Error: Invalid initial balance")
}

func TestNewLogger(t *testing.T) {
	l, err := report.NewLogger("", "production")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = report.NewLogger("", report.EnvDevelopment)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = report.NewLogger("warn", "production")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = report.NewLogger("loud", "production")
	assert.Error(t, err)
}

func TestNewLoggerTo_WritesJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := report.NewLoggerTo(&buf, "info", "production")
	require.NoError(t, err)

	l.Info("hello", zap.String("k", "v"))

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
