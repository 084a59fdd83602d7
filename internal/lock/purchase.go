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
	dErrors "keyledger/pkg/domain-errors"
)

// Purchase sells recipient a key, or extends the key recipient already has, and
// returns its token-id. The caller pays at least the discounted price; any
// excess stays with the pool. A valid key is extended by one duration from its
// current expiration; an expired one restarts from now.
//
// referrer is credited with the registry only when it holds a valid key.
func (l *Lock) Purchase(ctx context.Context, recipient, referrer domain.Address) (uint64, error) {
	const op = "purchase"
	var tokenID uint64
	err := l.run(ctx, op, true, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyIfAlive(op); err != nil {
			return err
		}
		if l.st.sold >= l.st.maxKeys {
			return models.Fail(models.ErrSoldOut, op)
		}
		if recipient.IsZero() {
			return models.Fail(models.ErrInvalidAddress, op)
		}
		now := tx.Now()
		price := l.st.keyPrice

		discount, tokens, err := l.registry.ComputeAvailableDiscountFor(l.outbound(ctx), recipient, price)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeOf(err), op+": discount")
		}
		netPrice := new(big.Int)
		if discount == nil || discount.Cmp(price) < 0 {
			netPrice.Set(price)
			if discount != nil && discount.Sign() > 0 {
				netPrice.Sub(netPrice, discount)
			}
		}

		key := l.st.keys[recipient]
		renewing := key.HasTokenID()
		l.assignTokenID(tx, &key)
		l.recordOwner(tx, recipient, key.TokenID)
		// A renewal extends the recorded expiration even when it already lapsed.
		if renewing {
			key.ExpiresAt = key.ExpiresAt.Add(l.st.duration)
		} else {
			key.ExpiresAt = now.Add(l.st.duration)
		}
		ledger.Put(tx, l.st.keys, recipient, key)
		tokenID = key.TokenID

		tx.Emit(l.address, events.KindTransfer, events.Transfer{From: domain.ZeroAddress, To: recipient, TokenID: tokenID})

		if discount != nil && discount.Sign() > 0 {
			if tokens == nil {
				tokens = new(big.Int)
			}
			if err := l.registry.RecordConsumedDiscount(l.outbound(ctx), discount, tokens); err != nil {
				return dErrors.Wrap(err, dErrors.CodeOf(err), op+": record discount")
			}
		}
		credited := domain.ZeroAddress
		if l.hasValidKey(referrer, now) {
			credited = referrer
		}
		if err := l.registry.RecordKeyPurchase(l.outbound(ctx), netPrice, credited); err != nil {
			return dErrors.Wrap(err, dErrors.CodeOf(err), op+": record purchase")
		}

		if err := l.chargeAtLeast(ctx, c, netPrice, op); err != nil {
			return err
		}

		l.committed(tx, "key purchased",
			"holder", recipient.Hex(),
			"token_id", tokenID,
			"price", netPrice.String(),
			"expires_at", key.ExpiresAt,
		)
		l.record(tx, func(m *metrics.Metrics) { m.IncrementPurchased() })
		return nil
	})
	return tokenID, err
}

// Grant issues or extends recipient's key to expiration at no cost.
func (l *Lock) Grant(ctx context.Context, recipient domain.Address, expiration time.Time) error {
	return l.GrantKeys(ctx, []domain.Address{recipient}, expiration)
}

// GrantKeys issues keys expiring at the same time to every recipient.
func (l *Lock) GrantKeys(ctx context.Context, recipients []domain.Address, expiration time.Time) error {
	expirations := make([]time.Time, len(recipients))
	for i := range expirations {
		expirations[i] = expiration
	}
	return l.GrantKeysWithExpirations(ctx, recipients, expirations)
}

// GrantKeysWithExpirations issues keys with per-recipient expirations. Owner
// only. Grants do not count against the supply cap, but each assigns a token-id
// to a recipient that has none. A grant must push the recipient's expiration
// strictly later; the whole batch fails otherwise.
func (l *Lock) GrantKeysWithExpirations(ctx context.Context, recipients []domain.Address, expirations []time.Time) error {
	const op = "grant keys"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		if err := l.onlyIfAlive(op); err != nil {
			return err
		}
		if len(recipients) != len(expirations) {
			return models.Fail(models.ErrLengthMismatch, op)
		}

		for i, recipient := range recipients {
			if recipient.IsZero() {
				return models.Fail(models.ErrInvalidAddress, op)
			}
			key := l.st.keys[recipient]
			if !expirations[i].After(key.ExpiresAt) {
				return models.Fail(models.ErrAlreadyOwnsKey, op)
			}
			l.assignTokenID(tx, &key)
			l.recordOwner(tx, recipient, key.TokenID)
			key.ExpiresAt = expirations[i]
			ledger.Put(tx, l.st.keys, recipient, key)

			tx.Emit(l.address, events.KindTransfer, events.Transfer{From: domain.ZeroAddress, To: recipient, TokenID: key.TokenID})
		}

		l.committed(tx, "keys granted", "count", len(recipients))
		l.record(tx, func(m *metrics.Metrics) { m.AddGranted(len(recipients)) })
		return nil
	})
}
