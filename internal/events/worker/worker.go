package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"keyledger/internal/events/store/postgres"
	"keyledger/pkg/platform/circuit"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Source is the outbox side of the relay.
type Source interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Target receives relayed outbox rows.
type Target interface {
	PublishEntries(ctx context.Context, entries []postgres.Entry) error
}

// Worker moves unpublished outbox rows to the target on a fixed interval.
// Delivery is at-least-once: a crash between publish and mark repeats the batch.
type Worker struct {
	source    Source
	target    Target
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	breaker   *circuit.Breaker
}

// Option configures the Worker.
type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithBreaker replaces the breaker that tracks consecutive relay failures.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) {
		w.breaker = b
	}
}

func NewWorker(source Source, target Target, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		target:    target,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		breaker:   circuit.New("outbox-relay", circuit.WithFailureThreshold(3)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays until ctx is cancelled. Relay errors are logged and retried on
// the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, err := w.RelayOnce(ctx)
			w.observe(ctx, err)
		}
	}
}

// Degraded reports whether recent relays kept failing.
func (w *Worker) Degraded() bool {
	return w.breaker.IsOpen()
}

func (w *Worker) observe(ctx context.Context, err error) {
	if err == nil {
		if _, change := w.breaker.RecordSuccess(); change.Closed && w.logger != nil {
			w.logger.InfoContext(ctx, "outbox relay recovered")
		}
		return
	}
	_, change := w.breaker.RecordFailure()
	if w.logger == nil {
		return
	}
	if change.Opened {
		w.logger.ErrorContext(ctx, "outbox relay degraded", "error", err)
		return
	}
	w.logger.WarnContext(ctx, "outbox relay failed", "error", err)
}

// RelayOnce drains one batch and returns how many rows were relayed.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.source.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := w.target.PublishEntries(ctx, entries); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := w.source.MarkPublished(ctx, ids, time.Now()); err != nil {
		return 0, err
	}
	if w.logger != nil {
		w.logger.DebugContext(ctx, "outbox batch relayed",
			"count", len(entries),
			"last_sequence", entries[len(entries)-1].Sequence,
		)
	}
	return len(entries), nil
}
