// Package eventpublisher delivers committed transaction events to kafka.
package eventpublisher

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/go-petr/pet-wallet/internal/domain"
)

// MessageWriter is the part of kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes transaction events keyed by wallet id, so events of one
// wallet land on the same partition in commit order.
type Kafka struct {
	writer MessageWriter
}

// BatchTimeout bounds how long a published event waits for a batch to fill up.
// Publish is synchronous, so it adds to the request latency.
const BatchTimeout = 5 * time.Millisecond

// NewKafka returns publisher writing to topic on the given brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return NewWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	})
}

// NewWithWriter returns publisher on top of the given writer.
func NewWithWriter(w MessageWriter) *Kafka {
	return &Kafka{writer: w}
}

// Message converts event into a kafka message.
func Message(event domain.TransactionEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.Transaction.WalletID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
		Time: event.OccurredAt,
	}, nil
}

// Publish writes event to kafka.
func (p *Kafka) Publish(ctx context.Context, event domain.TransactionEvent) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the writer.
func (p *Kafka) Close() error {
	return p.writer.Close()
}

// Log only logs events. It is used when no brokers are configured.
type Log struct{}

// Publish logs event with the request scoped logger.
func (Log) Publish(ctx context.Context, event domain.TransactionEvent) error {
	zerolog.Ctx(ctx).Debug().
		Str("kind", event.Kind).
		Int64("transaction_id", event.Transaction.ID).
		Int64("wallet_id", event.Transaction.WalletID).
		Str("wallet_balance", event.WalletBalance).
		Msg("transaction event")

	return nil
}

// Close is a no-op.
func (Log) Close() error {
	return nil
}
