package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"keyledger/internal/events"
	"keyledger/pkg/platform/sentinel"
	txcontext "keyledger/pkg/platform/tx"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS ledger_outbox (
	id           UUID PRIMARY KEY,
	sequence     BIGINT NOT NULL UNIQUE,
	kind         TEXT NOT NULL,
	emitter      TEXT NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS ledger_outbox_unpublished_idx
	ON ledger_outbox (sequence) WHERE published_at IS NULL;
`

// Store implements events.Sink using the transactional outbox pattern.
// Committed ledger events are written to the outbox table and relayed to Kafka
// by the outbox worker.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL outbox store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Entry is one outbox row awaiting relay.
type Entry struct {
	ID       uuid.UUID
	Sequence uint64
	Kind     events.Kind
	Emitter  string
	Payload  []byte
}

// Migrate creates the outbox table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger outbox: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Publish writes a committed batch to the outbox. It joins a SQL transaction
// carried in ctx, otherwise it opens its own so the batch lands all-or-nothing.
func (s *Store) Publish(ctx context.Context, batch []events.Event) error {
	if len(batch) == 0 {
		return nil
	}
	if tx, ok := txcontext.From(ctx); ok {
		return s.insert(ctx, tx, batch)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.insert(txcontext.WithTx(ctx, tx), tx, batch); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outbox tx: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, exec dbExecutor, batch []events.Event) error {
	query := `
		INSERT INTO ledger_outbox (id, sequence, kind, emitter, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, e := range batch {
		payload, err := events.Encode(e)
		if err != nil {
			return err
		}
		_, err = exec.ExecContext(ctx, query,
			e.ID,
			int64(e.Sequence),
			string(e.Kind),
			e.Emitter.Hex(),
			payload,
			e.Timestamp,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("outbox entry %d: %w", e.Sequence, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert outbox entry: %w", err)
		}
	}
	return nil
}

// isUniqueViolation recognises the error shapes of both registered drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// FetchUnpublished returns up to limit rows in sequence order.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, sequence, kind, emitter, payload
		FROM ledger_outbox
		WHERE published_at IS NULL
		ORDER BY sequence
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			seq  int64
			kind string
		)
		if err := rows.Scan(&e.ID, &seq, &kind, &e.Emitter, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		e.Sequence = uint64(seq)
		e.Kind = events.Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given rows as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	query := `UPDATE ledger_outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(raw), at); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// Pending counts rows not yet relayed.
func (s *Store) Pending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_outbox WHERE published_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return n, nil
}
