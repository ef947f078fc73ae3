package report

import (
	"context"
	"io"
	"sync"

	"github.com/warp/batch-ledger/ledger"
	"go.uber.org/zap"
)

// CompletedMarker ends every evaluation, whatever its outcome.
const CompletedMarker = "Bank account processing completed"

// LogObserver writes each Summary to a zap logger. It only reads the Summary.
// The completion marker is not a log entry; see MarkerWriter.
type LogObserver struct {
	Logger *zap.Logger
}

// NewLogObserver returns an observer logging to logger (a no-op logger if nil).
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) Observe(_ context.Context, s ledger.Summary) {
	log := o.Logger.With(
		zap.String("account_number", s.AccountNumber),
		zap.String("currency", s.Currency),
	)
	if s.Aborted() {
		for _, r := range s.Rejected {
			if r.Code.IsAccountLevel() {
				log.Error("batch aborted", zap.String("code", string(r.Code)), zap.String("reason", r.Reason))
			}
		}
		return
	}

	log.Info("account summary",
		zap.String("account_holder", s.AccountHolder),
		zap.Stringer("opening_balance", s.OpeningBalance),
		zap.Stringer("final_balance", s.FinalBalance),
		zap.Int("applied", len(s.Applied)),
		zap.Int("rejected", len(s.Rejected)),
	)
	for _, a := range s.Applied {
		log.Debug("transaction applied",
			zap.Int("index", a.Index),
			zap.String("type", string(a.Kind)),
			zap.Stringer("amount", a.Amount),
			zap.Stringer("balance_after", a.BalanceAfter),
		)
	}
	for _, r := range s.Rejected {
		fields := []zap.Field{zap.String("code", string(r.Code)), zap.String("reason", r.Reason)}
		if r.Index != nil {
			fields = append(fields, zap.Int("index", *r.Index))
		}
		log.Warn("transaction rejected", fields...)
	}
}

// MarkerWriter writes the completion marker to w after each evaluation. It
// is meant for ledger.Evaluator's Completed hook and bypasses log levels.
type MarkerWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewMarkerWriter(w io.Writer) *MarkerWriter {
	return &MarkerWriter{w: w}
}

// Completed matches the signature of ledger.Evaluator.Completed.
func (m *MarkerWriter) Completed(context.Context, ledger.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	RenderCompleted(m.w)
}
