// Package service implements the Registry: it creates pools, keeps their
// economic records and serves the display defaults pools fall back to.
//
// The Registry is the ports.Registry every pool it creates calls back into.
// Pool-restricted entry points identify the pool by the caller in the context
// and reject addresses the Registry did not create.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"keyledger/internal/events"
	"keyledger/internal/ledger"
	"keyledger/internal/lock"
	lockmetrics "keyledger/internal/lock/metrics"
	lockmodels "keyledger/internal/lock/models"
	lockports "keyledger/internal/lock/ports"
	"keyledger/internal/registry/archive"
	"keyledger/internal/registry/models"
	"keyledger/internal/registry/ports"
	"keyledger/internal/signature"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/platform/sentinel"
	"keyledger/pkg/requestcontext"
)

// Service is the Registry.
type Service struct {
	address  domain.Address
	owner    domain.Address
	coord    *ledger.Coordinator
	bank     lockports.NativeBank
	tokens   ports.TokenDirectory
	accounts lockports.Accounts
	archive  archive.Store
	logger   *slog.Logger
	metrics  *lockmetrics.Metrics

	nonce    uint64
	pools    map[domain.Address]*lock.Lock
	records  map[domain.Address]models.PoolRecord
	order    []domain.Address
	totals   models.Totals
	defaults models.Defaults
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics is shared with every pool the Registry creates.
func WithMetrics(m *lockmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTokenDirectory enables pools priced in a token.
func WithTokenDirectory(d ports.TokenDirectory) Option {
	return func(s *Service) {
		s.tokens = d
	}
}

// WithAccounts enables receiver checks on safe transfers in created pools.
func WithAccounts(a lockports.Accounts) Option {
	return func(s *Service) {
		s.accounts = a
	}
}

// WithArchive stores a tombstone snapshot of every decommissioned pool.
func WithArchive(a archive.Store) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithDefaults sets the initial display defaults.
func WithDefaults(d models.Defaults) Option {
	return func(s *Service) {
		s.defaults = d
	}
}

// New creates a Registry at address administered by owner.
func New(address, owner domain.Address, coord *ledger.Coordinator, bank lockports.NativeBank, opts ...Option) *Service {
	s := &Service{
		address: address,
		owner:   owner,
		coord:   coord,
		bank:    bank,
		pools:   make(map[domain.Address]*lock.Lock),
		records: make(map[domain.Address]models.PoolRecord),
		totals: models.Totals{
			GrossNetworkProduct:  new(big.Int),
			TotalDiscountGranted: new(big.Int),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Address is the Registry's identity.
func (s *Service) Address() domain.Address {
	return s.address
}

// poolAddress derives the n-th pool address: the last 20 bytes of
// keccak256(registry ‖ uint256(n)).
func (s *Service) poolAddress(n uint64) domain.Address {
	h := signature.Keccak256(s.address[:], signature.Uint256(n))
	return domain.BytesToAddress(h[12:])
}

// CreatePool builds a pool owned by the caller and registers it.
func (s *Service) CreatePool(ctx context.Context, cfg lockmodels.Config) (domain.Address, error) {
	const op = "create pool"
	var addr domain.Address
	err := s.coord.RunInTx(ctx, "registry."+op, func(ctx context.Context, tx *ledger.Tx) error {
		caller := requestcontext.Caller(ctx)
		if caller.IsZero() {
			return lockmodels.Fail(lockmodels.ErrInvalidAddress, op)
		}
		if requestcontext.Payment(ctx).Sign() > 0 {
			return lockmodels.Fail(lockmodels.ErrPaymentNotAccepted, op)
		}

		ledger.Set(tx, &s.nonce, s.nonce+1)
		addr = s.poolAddress(s.nonce)

		opts := []lock.Option{lock.WithDestroyHook(s.archivePool)}
		if s.logger != nil {
			opts = append(opts, lock.WithLogger(s.logger))
		}
		if s.metrics != nil {
			opts = append(opts, lock.WithMetrics(s.metrics))
		}
		if s.accounts != nil {
			opts = append(opts, lock.WithAccounts(s.accounts))
		}
		if !cfg.IsNative() && s.tokens != nil {
			if token, ok := s.tokens.Token(cfg.Currency); ok {
				opts = append(opts, lock.WithTokenLedger(token))
			}
		}
		l, err := lock.New(ctx, addr, caller, cfg, s.coord, s, s.bank, opts...)
		if err != nil {
			return err
		}

		ledger.Put(tx, s.pools, addr, l)
		ledger.Put(tx, s.records, addr, models.PoolRecord{
			Address:               addr,
			Owner:                 caller,
			Deployed:              true,
			TotalSales:            new(big.Int),
			YieldedDiscountTokens: new(big.Int),
			CreatedAt:             tx.Now(),
		})
		ledger.Append(tx, &s.order, addr)

		tx.Emit(s.address, events.KindPoolCreated, events.PoolCreated{
			Owner:    caller,
			Pool:     addr,
			Currency: cfg.Currency,
			KeyPrice: new(big.Int).Set(cfg.KeyPrice),
			MaxKeys:  cfg.MaxNumberOfKeys,
			Duration: cfg.ExpirationDuration,
			Name:     cfg.Name,
		})
		tx.AfterCommit(func(ctx context.Context) {
			if s.logger != nil {
				s.logger.InfoContext(ctx, "pool created", "pool", addr.Hex(), "owner", caller.Hex(), "event", events.KindPoolCreated)
			}
			if s.metrics != nil {
				s.metrics.IncrementCreated()
			}
		})
		return nil
	})
	if err != nil {
		return domain.ZeroAddress, err
	}
	return addr, nil
}

// archivePool runs after a pool's DestroyLock commits. The pool itself stays
// registered as a readable tombstone.
func (s *Service) archivePool(ctx context.Context, snap lockmodels.Snapshot) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(ctx, snap); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to archive decommissioned pool", "pool", snap.Address.Hex(), "error", err)
	}
}

// registeredCaller resolves the calling pool's record.
func (s *Service) registeredCaller(ctx context.Context, op string) (models.PoolRecord, error) {
	rec, ok := s.records[requestcontext.Caller(ctx)]
	if !ok || !rec.Deployed {
		return models.PoolRecord{}, models.Fail(models.ErrUnknownPool, op)
	}
	return rec, nil
}

// RecordKeyPurchase adds value to the calling pool's sales and the global
// total. Referral rewards are not distributed.
func (s *Service) RecordKeyPurchase(ctx context.Context, value *big.Int, _ domain.Address) error {
	const op = "record key purchase"
	return s.coord.RunInTx(ctx, "registry."+op, func(ctx context.Context, tx *ledger.Tx) error {
		rec, err := s.registeredCaller(ctx, op)
		if err != nil {
			return err
		}
		if value == nil || value.Sign() < 0 {
			return models.Fail(models.ErrInvalidAmount, op)
		}
		rec = rec.Clone()
		rec.TotalSales.Add(rec.TotalSales, value)
		ledger.Put(tx, s.records, rec.Address, rec)
		ledger.Set(tx, &s.totals.GrossNetworkProduct, new(big.Int).Add(s.totals.GrossNetworkProduct, value))
		return nil
	})
}

// RecordConsumedDiscount adds discount to the global discount total. Discount
// token yields are not tracked yet.
func (s *Service) RecordConsumedDiscount(ctx context.Context, discount, _ *big.Int) error {
	const op = "record consumed discount"
	return s.coord.RunInTx(ctx, "registry."+op, func(ctx context.Context, tx *ledger.Tx) error {
		if _, err := s.registeredCaller(ctx, op); err != nil {
			return err
		}
		if discount == nil || discount.Sign() < 0 {
			return models.Fail(models.ErrInvalidAmount, op)
		}
		ledger.Set(tx, &s.totals.TotalDiscountGranted, new(big.Int).Add(s.totals.TotalDiscountGranted, discount))
		return nil
	})
}

// ComputeAvailableDiscountFor always offers no discount.
func (s *Service) ComputeAvailableDiscountFor(context.Context, domain.Address, *big.Int) (*big.Int, *big.Int, error) {
	return new(big.Int), new(big.Int), nil
}

// ConfigureDefaults replaces the display defaults. Owner only.
func (s *Service) ConfigureDefaults(ctx context.Context, defaults models.Defaults) error {
	const op = "configure defaults"
	return s.coord.RunInTx(ctx, "registry."+op, func(ctx context.Context, tx *ledger.Tx) error {
		if requestcontext.Caller(ctx) != s.owner {
			return models.Fail(models.ErrUnauthorized, op+": owner only")
		}
		ledger.Set(tx, &s.defaults, defaults)
		tx.Emit(s.address, events.KindDefaultsChanged, events.DefaultsChanged{
			BaseTokenURI: defaults.BaseTokenURI,
			TokenSymbol:  defaults.TokenSymbol,
		})
		return nil
	})
}

func (s *Service) GlobalBaseTokenURI(ctx context.Context) string {
	return s.Defaults(ctx).BaseTokenURI
}

func (s *Service) GlobalTokenSymbol(ctx context.Context) string {
	return s.Defaults(ctx).TokenSymbol
}

func (s *Service) Defaults(ctx context.Context) models.Defaults {
	var d models.Defaults
	_ = s.coord.View(ctx, func(context.Context) error {
		d = s.defaults
		return nil
	})
	return d
}

// Pool returns the pool at addr, including decommissioned ones.
func (s *Service) Pool(ctx context.Context, addr domain.Address) (*lock.Lock, bool) {
	var (
		l  *lock.Lock
		ok bool
	)
	_ = s.coord.View(ctx, func(context.Context) error {
		l, ok = s.pools[addr]
		return nil
	})
	return l, ok
}

// PoolSnapshot is a consistent read of the pool at addr.
func (s *Service) PoolSnapshot(ctx context.Context, addr domain.Address, withOwners bool) (lockmodels.Snapshot, error) {
	l, ok := s.Pool(ctx, addr)
	if !ok {
		return lockmodels.Snapshot{}, models.Fail(models.ErrPoolNotFound, "pool snapshot")
	}
	return l.Snapshot(ctx, withOwners), nil
}

// HolderKey reports holder's key in the pool at addr. A holder who never held
// a key gets a zero, invalid view.
func (s *Service) HolderKey(ctx context.Context, addr, holder domain.Address) (models.KeyView, error) {
	l, ok := s.Pool(ctx, addr)
	if !ok {
		return models.KeyView{}, models.Fail(models.ErrPoolNotFound, "holder key")
	}
	view := models.KeyView{Pool: addr, Holder: holder}
	key, ok := l.Key(ctx, holder)
	if !ok {
		return view, nil
	}
	view.TokenID = key.TokenID
	view.ExpiresAt = key.ExpiresAt
	view.Valid = key.IsValid(requestcontext.Now(ctx))
	if key.HasTokenID() {
		view.TokenURI = l.TokenURI(ctx, key.TokenID)
	}
	return view, nil
}

// Pools lists every created pool in creation order.
func (s *Service) Pools(ctx context.Context) []domain.Address {
	var out []domain.Address
	_ = s.coord.View(ctx, func(context.Context) error {
		out = append([]domain.Address{}, s.order...)
		return nil
	})
	return out
}

// Record returns the registry's bookkeeping for addr.
func (s *Service) Record(ctx context.Context, addr domain.Address) (models.PoolRecord, bool) {
	var (
		rec models.PoolRecord
		ok  bool
	)
	_ = s.coord.View(ctx, func(context.Context) error {
		rec, ok = s.records[addr]
		if ok {
			rec = rec.Clone()
		}
		return nil
	})
	return rec, ok
}

// Totals returns the global aggregates.
func (s *Service) Totals(ctx context.Context) models.Totals {
	var t models.Totals
	_ = s.coord.View(ctx, func(context.Context) error {
		t = s.totals.Clone()
		return nil
	})
	return t
}

// ArchivedPool returns the tombstone snapshot stored when addr was destroyed.
func (s *Service) ArchivedPool(ctx context.Context, addr domain.Address) (lockmodels.Snapshot, error) {
	if s.archive == nil {
		return lockmodels.Snapshot{}, models.Fail(models.ErrNotArchived, "archived pool")
	}
	snap, err := s.archive.Get(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return lockmodels.Snapshot{}, models.Fail(models.ErrNotArchived, "archived pool")
	}
	if err != nil {
		return lockmodels.Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "load archived pool")
	}
	return snap, nil
}
