// Package events delivers ledger events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"bondbook-backend/internal/application/ledger"

	"github.com/segmentio/kafka-go"
)

var _ ledger.EventPublisher = (*Publisher)(nil)

// Publisher writes each event as one JSON message keyed by event type.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event ledger.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: data,
		Time:  event.OccurredAt,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// New returns a Kafka publisher, or a no-op publisher when no brokers are configured.
// The returned close func is always safe to call.
func New(brokers string, topic string) (ledger.EventPublisher, func() error) {
	list := ParseBrokers(brokers)
	if len(list) == 0 {
		return ledger.NopPublisher{}, func() error { return nil }
	}
	p := NewPublisher(list, topic)
	return p, p.Close
}
