// Package stream mirrors committed ledger events into a Redis stream so local
// consumers can tail them without a Kafka cluster.
package stream

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"keyledger/internal/events"
)

// DefaultMaxLen bounds the stream with approximate trimming.
const DefaultMaxLen = 100_000

// Publisher appends events to a Redis stream.
type Publisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithMaxLen overrides the approximate stream length cap. Zero disables trimming.
func WithMaxLen(n int64) Option {
	return func(p *Publisher) {
		p.maxLen = n
	}
}

// New creates a stream publisher.
func New(client redis.Cmdable, stream string, opts ...Option) *Publisher {
	p := &Publisher{client: client, stream: stream, maxLen: DefaultMaxLen}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish implements events.Sink. The batch is written in one pipeline.
func (p *Publisher) Publish(ctx context.Context, batch []events.Event) error {
	if len(batch) == 0 {
		return nil
	}
	pipe := p.client.TxPipeline()
	for _, e := range batch {
		raw, err := events.Encode(e)
		if err != nil {
			return err
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: p.maxLen > 0,
			Values: map[string]any{
				"sequence": strconv.FormatUint(e.Sequence, 10),
				"kind":     string(e.Kind),
				"emitter":  e.Emitter.Hex(),
				"event":    raw,
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append to stream %s: %w", p.stream, err)
	}
	return nil
}

// Read returns up to count events after the given stream ID ("0" for the start).
func (p *Publisher) Read(ctx context.Context, after string, count int64) ([]events.Envelope, string, error) {
	start := "-"
	if after != "" && after != "0" {
		start = "(" + after
	}
	msgs, err := p.client.XRangeN(ctx, p.stream, start, "+", count).Result()
	if err != nil {
		return nil, after, fmt.Errorf("read stream %s: %w", p.stream, err)
	}

	out := make([]events.Envelope, 0, len(msgs))
	last := after
	for _, m := range msgs {
		raw, ok := m.Values["event"].(string)
		if !ok {
			return nil, after, fmt.Errorf("stream entry %s has no event field", m.ID)
		}
		env, err := events.Decode([]byte(raw))
		if err != nil {
			return nil, after, err
		}
		out = append(out, env)
		last = m.ID
	}
	return out, last, nil
}
