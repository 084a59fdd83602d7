// Package lock implements a pool: the policy under which time-bound keys are
// sold, granted, transferred, delegated and refunded.
//
// A Lock is one entity assembled from capability files that share a single
// state struct:
//
//   - funds.go     currency abstraction, charging and payouts
//   - keys.go      holder to key mapping, token-id assignment, pagination
//   - approval.go  per-token approval and blanket operators
//   - purchase.go  paid issuance, extension and owner grants
//   - transfer.go  ownership moves with pro-rated fee and expiration merge
//   - refund.go    pro-rated cancellation and signed delegated cancellation
//   - admin.go     owner configuration and the disable/destroy lifecycle
//   - display.go   name, symbol and token URIs
//
// Every public mutation runs as one ledger transaction. Caller identity, attached
// native payment and the current time come from the context (pkg/requestcontext).
// State is final before any payout or external callback so reentrant calls observe
// the updated pool.
package lock

import (
	"context"
	"log/slog"
	"math/big"

	"keyledger/internal/ledger"
	"keyledger/internal/lock/metrics"
	"keyledger/internal/lock/models"
	"keyledger/internal/lock/ports"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/requestcontext"
)

// Lock is a single pool.
type Lock struct {
	address   domain.Address
	coord     *ledger.Coordinator
	registry  ports.Registry
	bank      ports.NativeBank
	token     ports.TokenLedger
	accounts  ports.Accounts
	logger    *slog.Logger
	metrics   *metrics.Metrics
	onDestroy func(ctx context.Context, snap models.Snapshot)

	st *state
}

// Option configures a Lock.
type Option func(*Lock)

// WithLogger logs committed operations.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lock) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Lock) {
		l.metrics = m
	}
}

// WithTokenLedger sets the ledger of the pool's token currency. Required when
// the config names a non-zero currency.
func WithTokenLedger(t ports.TokenLedger) Option {
	return func(l *Lock) {
		l.token = t
	}
}

// WithAccounts enables receiver checks on safe transfers.
func WithAccounts(a ports.Accounts) Option {
	return func(l *Lock) {
		l.accounts = a
	}
}

// WithDestroyHook runs fn with the tombstone snapshot after DestroyLock commits.
func WithDestroyHook(fn func(ctx context.Context, snap models.Snapshot)) Option {
	return func(l *Lock) {
		l.onDestroy = fn
	}
}

// New builds a pool owned by owner. It must be called inside the registry's
// ledger transaction when the pool is created through the registry.
func New(
	ctx context.Context,
	address, owner domain.Address,
	cfg models.Config,
	coord *ledger.Coordinator,
	registry ports.Registry,
	bank ports.NativeBank,
	opts ...Option,
) (*Lock, error) {
	if address.IsZero() || owner.IsZero() {
		return nil, models.Fail(models.ErrInvalidAddress, "new lock")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if coord == nil || registry == nil || bank == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "lock requires a coordinator, registry and bank")
	}

	l := &Lock{
		address:  address,
		coord:    coord,
		registry: registry,
		bank:     bank,
	}
	for _, opt := range opts {
		opt(l)
	}

	if !cfg.IsNative() {
		if l.token == nil {
			return nil, models.Fail(models.ErrInvalidCurrency, "currency is not a known token")
		}
		if l.token.TotalSupply(ctx).Sign() <= 0 {
			return nil, models.Fail(models.ErrInvalidCurrency, "currency token has no supply")
		}
	} else {
		l.token = nil
	}

	l.st = newState(owner, cfg)
	return l, nil
}

// Address is the pool's identity.
func (l *Lock) Address() domain.Address {
	return l.address
}

// call is the implicit context of one entry point.
type call struct {
	caller domain.Address
	paid   *big.Int
}

// run executes fn as one ledger transaction. Decommissioned pools reject every
// mutation. Attached native payment moves from the caller into the pool first;
// operations that are not payable, or pools priced in a token, reject it.
func (l *Lock) run(ctx context.Context, op string, payable bool, fn func(ctx context.Context, tx *ledger.Tx, c call) error) error {
	return l.coord.RunInTx(ctx, "lock."+op, func(ctx context.Context, tx *ledger.Tx) error {
		if l.st.status.IsDecommissioned() {
			return models.Fail(models.ErrDecommissioned, op)
		}
		c := call{
			caller: requestcontext.Caller(ctx),
			paid:   requestcontext.Payment(ctx),
		}
		if c.paid.Sign() > 0 {
			if !payable || !l.isNative() {
				return models.Fail(models.ErrPaymentNotAccepted, op)
			}
			if err := l.bank.Send(ctx, l.address, c.paid); err != nil {
				return dErrors.Wrap(err, dErrors.CodePaymentRequired, op+": attached payment")
			}
		}
		return fn(requestcontext.WithPayment(ctx, nil), tx, c)
	})
}

// view runs a read against committed state, or the open transaction's state.
func (l *Lock) view(ctx context.Context, fn func(ctx context.Context) error) error {
	return l.coord.View(ctx, fn)
}

// outbound is the context for calls the pool makes as itself.
func (l *Lock) outbound(ctx context.Context) context.Context {
	return requestcontext.WithPayment(requestcontext.WithCaller(ctx, l.address), nil)
}

func (l *Lock) onlyOwner(c call, op string) error {
	if c.caller != l.st.owner {
		return models.Fail(models.ErrUnauthorized, op+": owner only")
	}
	return nil
}

func (l *Lock) onlyIfAlive(op string) error {
	if !l.st.status.IsAlive() {
		return models.Fail(models.ErrLockNotAlive, op)
	}
	return nil
}

// committed logs msg once the surrounding transaction commits.
func (l *Lock) committed(tx *ledger.Tx, msg string, args ...any) {
	if l.logger == nil {
		return
	}
	args = append([]any{"pool", l.address.Hex()}, args...)
	tx.AfterCommit(func(ctx context.Context) {
		l.logger.InfoContext(ctx, msg, args...)
	})
}

// record runs a metrics update once the surrounding transaction commits.
func (l *Lock) record(tx *ledger.Tx, fn func(m *metrics.Metrics)) {
	if l.metrics == nil {
		return
	}
	m := l.metrics
	tx.AfterCommit(func(context.Context) { fn(m) })
}
