// Package ledger serializes every ledger mutation through one transaction coordinator.
//
// The Registry, every Lock, the native bank and the token ledgers share a single
// Coordinator. Each public entry point runs inside RunInTx:
//
//   - Top-level calls take the world lock, freeze "now" for the whole operation and
//     open an otel span.
//   - A call made from inside an open transaction (a receiver hook calling back into a
//     pool, a pool paying out through the bank) joins it as a savepoint. A failing
//     savepoint undoes only its own writes and events.
//   - Writes are recorded in an undo journal. Any error, or a panic, replays the journal
//     backwards and discards buffered events.
//   - On success the buffered events are stamped with IDs and global sequence numbers and
//     flushed to the Sink before the lock is released. A Sink error rolls the operation back.
//
// Transactions are bound to the goroutine that opened them through ctx. Passing a
// transaction context to another goroutine is not supported.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"keyledger/internal/events"
	"keyledger/internal/platform/metrics"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/requestcontext"
)

const tracerName = "keyledger/internal/ledger"

// ErrTxClosed is returned when a context outlives the transaction it carries.
var ErrTxClosed = errors.New("ledger transaction already closed")

type (
	txKey   struct{}
	viewKey struct{}
)

// Coordinator owns the world lock and the global event sequence.
type Coordinator struct {
	mu      sync.RWMutex
	seq     uint64
	sink    events.Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithSink sets where committed events are flushed.
func WithSink(sink events.Sink) Option {
	return func(c *Coordinator) {
		c.sink = sink
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = t
	}
}

func New(opts ...Option) *Coordinator {
	c := &Coordinator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Sequence returns the sequence number of the last committed event.
func (c *Coordinator) Sequence() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}

// RunInTx executes fn as one all-or-nothing ledger operation.
// Hooks registered with Tx.AfterCommit run after the world lock is released.
func (c *Coordinator) RunInTx(ctx context.Context, op string, fn func(ctx context.Context, tx *Tx) error) error {
	if tx, ok := c.current(ctx); ok {
		return tx.savepoint(ctx, fn)
	}
	if tx, ok := ctx.Value(txKey{}).(*Tx); ok && tx.coord == c && tx.closed {
		return ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))
	hooks, err := c.run(ctx, op, fn)
	if err != nil {
		return err
	}
	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

func (c *Coordinator) run(ctx context.Context, op string, fn func(ctx context.Context, tx *Tx) error) (hooks []func(context.Context), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	spanCtx, span := c.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(
		attribute.String("ledger.operation", op),
		attribute.String("ledger.caller", requestcontext.Caller(ctx).Hex()),
	))
	defer span.End()

	tx := &Tx{coord: c, op: op, now: requestcontext.Now(ctx)}
	committed := false
	defer func() {
		if committed {
			return
		}
		tx.rollbackTo(0, 0, 0)
		tx.closed = true
		if c.metrics != nil {
			c.metrics.IncrementRolledBack(op)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if c.logger != nil {
				c.logger.WarnContext(ctx, "ledger operation rolled back",
					"operation", op,
					"caller", requestcontext.Caller(ctx).Hex(),
					"error", err,
				)
			}
		}
	}()

	if err = fn(context.WithValue(spanCtx, txKey{}, tx), tx); err != nil {
		return nil, err
	}

	batch := tx.stamp(ctx, c.seq)
	if c.sink != nil && len(batch) > 0 {
		if err = c.sink.Publish(spanCtx, batch); err != nil {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "event sink rejected commit")
			return nil, err
		}
	}
	c.seq += uint64(len(batch))
	committed = true
	tx.closed = true

	span.SetAttributes(attribute.Int("ledger.events", len(batch)))
	if c.metrics != nil {
		c.metrics.IncrementCommitted(op)
		c.metrics.AddEventsPublished(len(batch))
		c.metrics.ObserveTransaction(start)
	}
	return tx.afterCommit, nil
}

// View runs a read-only fn against a consistent snapshot. Inside an open
// transaction it reads that transaction's uncommitted state. Nested views
// share the outer read lock. fn must not write.
func (c *Coordinator) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := c.current(ctx); ok {
		return fn(ctx)
	}
	if v, ok := ctx.Value(viewKey{}).(*Coordinator); ok && v == c {
		return fn(ctx)
	}
	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(context.WithValue(ctx, viewKey{}, c))
}

func (c *Coordinator) current(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	if !ok || tx.coord != c || tx.closed {
		return nil, false
	}
	return tx, true
}

// Tx is an open ledger transaction.
type Tx struct {
	coord       *Coordinator
	op          string
	now         time.Time
	undo        []func()
	pending     []pendingEvent
	afterCommit []func(context.Context)
	closed      bool
}

type pendingEvent struct {
	kind    events.Kind
	emitter domain.Address
	payload any
}

// Now is the frozen time of the operation.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Operation is the name the top-level transaction was opened with.
func (tx *Tx) Operation() string {
	return tx.op
}

// OnRollback registers an undo step. Steps run in reverse registration order.
func (tx *Tx) OnRollback(fn func()) {
	tx.undo = append(tx.undo, fn)
}

// Emit buffers an event until commit.
func (tx *Tx) Emit(emitter domain.Address, kind events.Kind, payload any) {
	tx.pending = append(tx.pending, pendingEvent{kind: kind, emitter: emitter, payload: payload})
}

// AfterCommit registers fn to run once the transaction has committed.
func (tx *Tx) AfterCommit(fn func(ctx context.Context)) {
	tx.afterCommit = append(tx.afterCommit, fn)
}

// PendingEvents returns the kinds buffered so far, oldest first.
func (tx *Tx) PendingEvents() []events.Kind {
	kinds := make([]events.Kind, len(tx.pending))
	for i, p := range tx.pending {
		kinds[i] = p.kind
	}
	return kinds
}

func (tx *Tx) savepoint(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	u, e, a := len(tx.undo), len(tx.pending), len(tx.afterCommit)
	ok := false
	defer func() {
		if !ok {
			tx.rollbackTo(u, e, a)
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	ok = true
	return nil
}

func (tx *Tx) rollbackTo(undoMark, eventMark, hookMark int) {
	for i := len(tx.undo) - 1; i >= undoMark; i-- {
		tx.undo[i]()
	}
	tx.undo = tx.undo[:undoMark]
	tx.pending = tx.pending[:eventMark]
	tx.afterCommit = tx.afterCommit[:hookMark]
}

func (tx *Tx) stamp(ctx context.Context, lastSeq uint64) []events.Event {
	if len(tx.pending) == 0 {
		return nil
	}
	requestID := requestcontext.RequestID(ctx)
	batch := make([]events.Event, len(tx.pending))
	for i, p := range tx.pending {
		batch[i] = events.Event{
			ID:        uuid.New(),
			Sequence:  lastSeq + uint64(i) + 1,
			Kind:      p.kind,
			Emitter:   p.emitter,
			Timestamp: tx.now,
			RequestID: requestID,
			Payload:   p.payload,
		}
	}
	return batch
}
