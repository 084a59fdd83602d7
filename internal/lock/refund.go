package lock

import (
	"context"
	"errors"
	"math/big"
	"time"

	"keyledger/internal/events"
	"keyledger/internal/ledger"
	"keyledger/internal/lock/metrics"
	"keyledger/internal/lock/models"
	"keyledger/internal/signature"
	"keyledger/pkg/domain"
	"keyledger/pkg/requestcontext"
)

// refundFor prices cancelling holder's key at now: the unused share of the key
// price (all of it once a full duration remains) minus the penalty, floored at
// zero. The result never exceeds the key price.
func (l *Lock) refundFor(holder domain.Address, now time.Time) *big.Int {
	remaining := l.st.keys[holder].Remaining(now)
	price := l.st.keyPrice

	refund := new(big.Int)
	if remaining >= l.st.duration {
		refund.Set(price)
	} else {
		refund.Mul(price, big.NewInt(int64(remaining)))
		refund.Quo(refund, big.NewInt(int64(l.st.duration)))
	}

	penalty := l.st.refundPenalty.Apply(price)
	if refund.Cmp(penalty) <= 0 {
		return new(big.Int)
	}
	return refund.Sub(refund, penalty)
}

// cancel expires holder's key, then pays the refund to the caller. The key is
// dead before any value leaves the pool.
func (l *Lock) cancel(ctx context.Context, tx *ledger.Tx, c call, holder domain.Address, delegated bool, op string) (*big.Int, error) {
	now := tx.Now()
	key := l.st.keys[holder]
	if !key.IsValid(now) {
		return nil, models.Fail(models.ErrNoSuchKey, op)
	}
	refund := l.refundFor(holder, now)

	key.ExpiresAt = now
	ledger.Put(tx, l.st.keys, holder, key)
	tx.Emit(l.address, events.KindCancelKey, events.CancelKey{
		TokenID:   key.TokenID,
		Holder:    holder,
		SendTo:    c.caller,
		Refund:    new(big.Int).Set(refund),
		Delegated: delegated,
	})

	if err := l.payOut(ctx, c.caller, refund, op); err != nil {
		return nil, err
	}

	path := "self"
	if delegated {
		path = "delegated"
	}
	l.committed(tx, "key cancelled",
		"holder", holder.Hex(),
		"token_id", key.TokenID,
		"refund", refund.String(),
		"path", path,
	)
	l.record(tx, func(m *metrics.Metrics) {
		m.IncrementCancelled(path)
		m.AddRefund(refund)
	})
	return refund, nil
}

// CancelAndRefund cancels the caller's key and refunds the caller. Allowed
// while the pool is disabled.
func (l *Lock) CancelAndRefund(ctx context.Context) (*big.Int, error) {
	const op = "cancel and refund"
	var refund *big.Int
	err := l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		var err error
		refund, err = l.cancel(ctx, tx, c, c.caller, false, op)
		return err
	})
	return refund, err
}

// CancelAndRefundFor cancels holder's key on holder's signed instruction and
// pays the refund to the caller. The signature covers the pool, holder's
// current nonce and the caller, so it is single-use and bound to one submitter.
func (l *Lock) CancelAndRefundFor(ctx context.Context, holder domain.Address, sig []byte) (*big.Int, error) {
	const op = "cancel and refund for"
	var refund *big.Int
	err := l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		digest := l.approvalHash(holder, c.caller)
		signer, err := signature.RecoverMessageHash(digest, sig)
		switch {
		case errors.Is(err, signature.ErrMalleableSignature):
			return models.Fail(models.ErrNonCanonicalSignature, op)
		case err != nil, signer != holder:
			return models.Fail(models.ErrInvalidSignature, op)
		}

		next := l.st.nonces[holder] + 1
		ledger.Put(tx, l.st.nonces, holder, next)
		tx.Emit(l.address, events.KindNonceChanged, events.NonceChanged{Holder: holder, Nonce: next})

		refund, err = l.cancel(ctx, tx, c, holder, true, op)
		return err
	})
	return refund, err
}

// IncrementNonce invalidates every delegated cancellation the caller has signed.
func (l *Lock) IncrementNonce(ctx context.Context) error {
	const op = "increment nonce"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		next := l.st.nonces[c.caller] + 1
		ledger.Put(tx, l.st.nonces, c.caller, next)
		tx.Emit(l.address, events.KindNonceChanged, events.NonceChanged{Holder: c.caller, Nonce: next})
		return nil
	})
}

// KeyOwnerToNonce returns holder's current delegation nonce.
func (l *Lock) KeyOwnerToNonce(ctx context.Context, holder domain.Address) uint64 {
	var n uint64
	_ = l.view(ctx, func(context.Context) error {
		n = l.st.nonces[holder]
		return nil
	})
	return n
}

func (l *Lock) approvalHash(holder, caller domain.Address) signature.Hash {
	return signature.Keccak256(l.address[:], signature.Uint256(l.st.nonces[holder]), caller[:])
}

// CancelAndRefundApprovalHash is the message holder signs to let caller cancel
// on its behalf. Sign it with signature.SignMessageHash.
func (l *Lock) CancelAndRefundApprovalHash(ctx context.Context, holder, caller domain.Address) signature.Hash {
	var h signature.Hash
	_ = l.view(ctx, func(context.Context) error {
		h = l.approvalHash(holder, caller)
		return nil
	})
	return h
}

// CancelAndRefundValueFor is the refund holder's key would fetch right now.
func (l *Lock) CancelAndRefundValueFor(ctx context.Context, holder domain.Address) *big.Int {
	var refund *big.Int
	_ = l.view(ctx, func(ctx context.Context) error {
		refund = l.refundFor(holder, requestcontext.Now(ctx))
		return nil
	})
	return refund
}

// UpdateRefundPenalty sets the share of the key price withheld on cancellation.
func (l *Lock) UpdateRefundPenalty(ctx context.Context, numerator, denominator uint64) error {
	const op = "update refund penalty"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyOwner(c, op); err != nil {
			return err
		}
		ratio, err := models.NewRatio(numerator, denominator)
		if err != nil {
			return err
		}
		ledger.Set(tx, &l.st.refundPenalty, ratio)
		tx.Emit(l.address, events.KindRefundPenaltyChanged, events.RefundPenaltyChanged{Numerator: numerator, Denominator: denominator})
		return nil
	})
}
