// Package kafka publishes evaluation-completed events.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/warp/batch-ledger/ledger"
	"go.uber.org/zap"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "ledger.evaluation_completed"

// EvaluationCompleted is emitted once per evaluation, aborted or not.
type EvaluationCompleted struct {
	EventID        string           `json:"event_id"`
	AccountNumber  string           `json:"account_number"`
	Currency       string           `json:"currency"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	FinalBalance   *decimal.Decimal `json:"final_balance"`
	Applied        int              `json:"applied"`
	Rejected       int              `json:"rejected"`
	Aborted        bool             `json:"aborted"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// NewEvaluationCompleted builds the event for a Summary.
func NewEvaluationCompleted(s ledger.Summary, at time.Time) EvaluationCompleted {
	return EvaluationCompleted{
		EventID:        uuid.NewString(),
		AccountNumber:  s.AccountNumber,
		Currency:       s.Currency,
		OpeningBalance: s.OpeningBalance,
		FinalBalance:   s.FinalBalance,
		Applied:        len(s.Applied),
		Rejected:       len(s.Rejected),
		Aborted:        s.Aborted(),
		OccurredAt:     at.UTC(),
	}
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is a ledger.Observer that publishes EvaluationCompleted events.
// Publish failures are logged and never reach the caller of Evaluate.
type Publisher struct {
	writer  MessageWriter
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewPublisher creates a publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}, logger)
}

// NewPublisherWithWriter creates a publisher on an existing writer.
func NewPublisherWithWriter(w MessageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, logger: logger, timeout: 5 * time.Second, now: time.Now}
}

// Publish writes one event keyed by account number.
func (p *Publisher) Publish(ctx context.Context, event EvaluationCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountNumber),
		Value: data,
	})
}

// Observe implements ledger.Observer.
func (p *Publisher) Observe(ctx context.Context, s ledger.Summary) {
	event := NewEvaluationCompleted(s, p.now())
	if err := p.Publish(context.WithoutCancel(ctx), event); err != nil {
		p.logger.Error("failed to publish evaluation event",
			zap.String("event_id", event.EventID),
			zap.String("account_number", event.AccountNumber),
			zap.Error(err),
		)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
