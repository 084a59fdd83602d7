package lock

import (
	"context"
	"math/big"
	"time"

	"keyledger/internal/events"
	"keyledger/internal/ledger"
	"keyledger/internal/lock/metrics"
	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
)

// UpdateKeyPrice changes the unit price for future purchases.
func (l *Lock) UpdateKeyPrice(ctx context.Context, price *big.Int) error {
	const op = "update key price"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		if err := l.onlyIfAlive(op); err != nil {
			return err
		}
		if price == nil || price.Sign() < 0 {
			return models.Fail(models.ErrInvalidPrice, op)
		}
		old := l.st.keyPrice
		ledger.Set(tx, &l.st.keyPrice, new(big.Int).Set(price))
		tx.Emit(l.address, events.KindPriceChanged, events.PriceChanged{OldPrice: new(big.Int).Set(old), NewPrice: new(big.Int).Set(price)})
		l.committed(tx, "key price updated", "old_price", old.String(), "new_price", price.String())
		return nil
	})
}

// UpdateTransferFee sets the share of the pro-rated key price charged on transfer.
func (l *Lock) UpdateTransferFee(ctx context.Context, numerator, denominator uint64) error {
	const op = "update transfer fee"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		ratio, err := models.NewRatio(numerator, denominator)
		if err != nil {
			return err
		}
		ledger.Set(tx, &l.st.transferFee, ratio)
		tx.Emit(l.address, events.KindTransferFeeChanged, events.TransferFeeChanged{Numerator: numerator, Denominator: denominator})
		return nil
	})
}

// ExpireKeyFor revokes holder's key without refund.
func (l *Lock) ExpireKeyFor(ctx context.Context, holder domain.Address) error {
	const op = "expire key"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		key := l.st.keys[holder]
		if !key.IsValid(tx.Now()) {
			return models.Fail(models.ErrNoSuchKey, op)
		}
		key.ExpiresAt = tx.Now()
		ledger.Put(tx, l.st.keys, holder, key)
		tx.Emit(l.address, events.KindExpireKeyByOwner, events.ExpireKeyByOwner{Holder: holder, TokenID: key.TokenID})
		l.committed(tx, "key expired by owner", "holder", holder.Hex(), "token_id", key.TokenID)
		l.record(tx, func(m *metrics.Metrics) { m.IncrementCancelled("owner") })
		return nil
	})
}

// Withdraw sends amount of the pool's balance to the owner. Zero withdraws everything.
func (l *Lock) Withdraw(ctx context.Context, amount *big.Int) error {
	const op = "withdraw"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		balance := l.balance(ctx)
		if balance.Sign() <= 0 {
			return models.Fail(models.ErrInsufficientBalance, op)
		}
		if amount == nil || amount.Sign() == 0 {
			amount = balance
		}
		if amount.Sign() < 0 || amount.Cmp(balance) > 0 {
			return models.Fail(models.ErrInsufficientBalance, op)
		}

		tx.Emit(l.address, events.KindWithdrawal, events.Withdrawal{Sender: c.caller, Beneficiary: l.st.owner, Amount: new(big.Int).Set(amount)})
		if err := l.payOut(ctx, l.st.owner, amount, op); err != nil {
			return err
		}
		l.committed(tx, "pool balance withdrawn", "amount", amount.String())
		return nil
	})
}

// UpdateLockName renames the pool.
func (l *Lock) UpdateLockName(ctx context.Context, name string) error {
	const op = "update lock name"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		old := l.st.name
		ledger.Set(tx, &l.st.name, name)
		tx.Emit(l.address, events.KindNameChanged, events.NameChanged{OldName: old, NewName: name})
		return nil
	})
}

// UpdateLockSymbol overrides the registry's default symbol for this pool.
func (l *Lock) UpdateLockSymbol(ctx context.Context, symbol string) error {
	const op = "update lock symbol"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		old := l.st.symbol
		ledger.Set(tx, &l.st.symbol, symbol)
		tx.Emit(l.address, events.KindSymbolChanged, events.SymbolChanged{OldSymbol: old, NewSymbol: symbol})
		return nil
	})
}

// SetBaseTokenURI overrides the registry's default base URI for this pool.
func (l *Lock) SetBaseTokenURI(ctx context.Context, uri string) error {
	const op = "set base token uri"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		old := l.st.baseURI
		ledger.Set(tx, &l.st.baseURI, uri)
		tx.Emit(l.address, events.KindBaseURIChanged, events.BaseURIChanged{OldURI: old, NewURI: uri})
		return nil
	})
}

// DisableLock stops sales, grants, transfers and approvals for good. Holders
// can still cancel for a refund.
func (l *Lock) DisableLock(ctx context.Context) error {
	const op = "disable lock"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		if !l.st.status.CanTransitionTo(models.StatusDisabled) {
			return models.Fail(models.ErrLockNotAlive, op)
		}
		ledger.Set(tx, &l.st.status, models.StatusDisabled)
		tx.Emit(l.address, events.KindDisable, events.Disable{})
		l.committed(tx, "pool disabled")
		l.record(tx, func(m *metrics.Metrics) { m.IncrementDisabled() })
		return nil
	})
}

// DestroyLock decommissions a disabled pool: it becomes a tombstone and its
// whole balance goes to the owner. The tombstone stays readable.
func (l *Lock) DestroyLock(ctx context.Context) error {
	const op = "destroy lock"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		if !l.st.status.CanTransitionTo(models.StatusDecommissioned) {
			return models.Fail(models.ErrDisableFirst, op)
		}

		ledger.Set(tx, &l.st.status, models.StatusDecommissioned)
		swept := l.balance(ctx)
		tx.Emit(l.address, events.KindDestroy, events.Destroy{Balance: new(big.Int).Set(swept), Owner: l.st.owner})
		if err := l.payOut(ctx, l.st.owner, swept, op); err != nil {
			return err
		}

		snap := l.snapshot(ctx, tx.Now(), true)
		if l.onDestroy != nil {
			hook := l.onDestroy
			tx.AfterCommit(func(ctx context.Context) { hook(ctx, snap) })
		}
		l.committed(tx, "pool destroyed", "swept", swept.String(), "owner", l.st.owner.Hex())
		l.record(tx, func(m *metrics.Metrics) { m.IncrementDestroyed() })
		return nil
	})
}

// Owner returns the pool owner.
func (l *Lock) Owner(ctx context.Context) domain.Address {
	var owner domain.Address
	_ = l.view(ctx, func(context.Context) error {
		owner = l.st.owner
		return nil
	})
	return owner
}

// Status returns the lifecycle state.
func (l *Lock) Status(ctx context.Context) models.Status {
	var s models.Status
	_ = l.view(ctx, func(context.Context) error {
		s = l.st.status
		return nil
	})
	return s
}

// IsAlive reports whether the pool still sells keys.
func (l *Lock) IsAlive(ctx context.Context) bool {
	return l.Status(ctx).IsAlive()
}

// MaxNumberOfKeys is the supply cap for purchases.
func (l *Lock) MaxNumberOfKeys(ctx context.Context) uint64 {
	var n uint64
	_ = l.view(ctx, func(context.Context) error {
		n = l.st.maxKeys
		return nil
	})
	return n
}

// ExpirationDuration is the validity bought by one purchase.
func (l *Lock) ExpirationDuration(ctx context.Context) time.Duration {
	var d time.Duration
	_ = l.view(ctx, func(context.Context) error {
		d = l.st.duration
		return nil
	})
	return d
}

// TransferFeeRatio returns the configured transfer fee.
func (l *Lock) TransferFeeRatio(ctx context.Context) models.Ratio {
	var r models.Ratio
	_ = l.view(ctx, func(context.Context) error {
		r = l.st.transferFee
		return nil
	})
	return r
}

// RefundPenaltyRatio returns the configured cancellation penalty.
func (l *Lock) RefundPenaltyRatio(ctx context.Context) models.Ratio {
	var r models.Ratio
	_ = l.view(ctx, func(context.Context) error {
		r = l.st.refundPenalty
		return nil
	})
	return r
}
