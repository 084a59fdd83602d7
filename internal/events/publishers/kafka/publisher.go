// Package kafka relays ledger events to a Kafka topic.
//
// Records are keyed by emitter so every pool's events land on one partition in
// commit order. Publishing is synchronous: Publish returns only after the broker
// acknowledged every record of the batch.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"keyledger/internal/events"
	"keyledger/internal/events/store/postgres"
)

const (
	headerKind     = "kind"
	headerSequence = "sequence"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes events to a single topic.
type Publisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a publisher over an existing producer.
func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewClient dials the brokers with settings suited to ordered, acknowledged delivery.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordPartitioner(kgo.StickyKeyPartitioner(nil)),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Publish implements events.Sink.
func (p *Publisher) Publish(ctx context.Context, batch []events.Event) error {
	records := make([]*kgo.Record, 0, len(batch))
	for _, e := range batch {
		value, err := events.Encode(e)
		if err != nil {
			return err
		}
		records = append(records, p.record(e.Emitter.Hex(), e.Kind, e.Sequence, value))
	}
	return p.produce(ctx, records)
}

// PublishEntries relays outbox rows that were already encoded.
func (p *Publisher) PublishEntries(ctx context.Context, entries []postgres.Entry) error {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, p.record(e.Emitter, e.Kind, e.Sequence, e.Payload))
	}
	return p.produce(ctx, records)
}

func (p *Publisher) record(key string, kind events.Kind, seq uint64, value []byte) *kgo.Record {
	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerKind, Value: []byte(kind)},
			{Key: headerSequence, Value: []byte(strconv.FormatUint(seq, 10))},
		},
	}
}

func (p *Publisher) produce(ctx context.Context, records []*kgo.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := p.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "ledger event delivery failed",
				"topic", p.topic,
				"records", len(records),
				"error", err,
			)
		}
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}
