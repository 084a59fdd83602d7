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
	"keyledger/pkg/requestcontext"
)

// transferFee is price × min(remaining, duration) × num / (duration × den),
// computed on nanoseconds so sub-second validity still counts.
func (l *Lock) transferFee(holder domain.Address, now time.Time) *big.Int {
	remaining := l.st.keys[holder].Remaining(now)
	if remaining <= 0 {
		return new(big.Int)
	}
	if remaining > l.st.duration {
		remaining = l.st.duration
	}
	fee := new(big.Int).Mul(l.st.keyPrice, big.NewInt(int64(remaining)))
	fee.Mul(fee, new(big.Int).SetUint64(l.st.transferFee.Numerator))
	den := new(big.Int).Mul(big.NewInt(int64(l.st.duration)), new(big.Int).SetUint64(l.st.transferFee.Denominator))
	return fee.Quo(fee, den)
}

// TransferFee is what moving holder's key would cost right now. Zero without
// a valid key.
func (l *Lock) TransferFee(ctx context.Context, holder domain.Address) *big.Int {
	var fee *big.Int
	_ = l.view(ctx, func(ctx context.Context) error {
		fee = l.transferFee(holder, requestcontext.Now(ctx))
		return nil
	})
	return fee
}

// TransferFrom moves from's key to to. The caller must be from, the token's
// approved address, or one of from's operators, and pays the transfer fee.
//
// If to has no valid key it takes over from's token-id and expiration. If to
// already holds a valid key it keeps its own token-id and gains from's
// remaining time; from's token-id is retired. Either way from's key is expired
// at once and loses its token-id, and any approval on tokenID is cleared.
func (l *Lock) TransferFrom(ctx context.Context, from, to domain.Address, tokenID uint64) error {
	const op = "transfer"
	return l.run(ctx, op, true, func(ctx context.Context, tx *ledger.Tx, c call) error {
		return l.transfer(ctx, tx, c, from, to, tokenID, op)
	})
}

// SafeTransferFrom is TransferFrom followed by a receipt check: a programmatic
// recipient must acknowledge the key or the whole transfer is undone.
func (l *Lock) SafeTransferFrom(ctx context.Context, from, to domain.Address, tokenID uint64, data []byte) error {
	const op = "safe transfer"
	return l.run(ctx, op, true, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.transfer(ctx, tx, c, from, to, tokenID, op); err != nil {
			return err
		}
		if l.accounts == nil || !l.accounts.IsProgrammatic(to) {
			return nil
		}
		selector, err := l.accounts.NotifyKeyReceived(l.outbound(ctx), to, c.caller, from, tokenID, data)
		if err != nil || selector != domain.KeyReceivedSelector {
			if l.metrics != nil {
				l.metrics.IncrementReceiverRejected()
			}
			return models.Fail(models.ErrReceiverRejected, op)
		}
		return nil
	})
}

func (l *Lock) transfer(ctx context.Context, tx *ledger.Tx, c call, from, to domain.Address, tokenID uint64, op string) error {
	if err := l.onlyIfAlive(op); err != nil {
		return err
	}
	now := tx.Now()
	fromKey := l.st.keys[from]
	if !fromKey.IsValid(now) || fromKey.TokenID != tokenID || tokenID == 0 {
		return models.Fail(models.ErrNoSuchKey, op)
	}
	if !l.canManage(from, tokenID, c.caller) {
		return models.Fail(models.ErrUnauthorized, op)
	}
	if to.IsZero() || to == from {
		return models.Fail(models.ErrInvalidAddress, op)
	}

	fee := l.transferFee(from, now)
	toKey := l.st.keys[to]
	if toKey.IsValid(now) {
		toKey.ExpiresAt = toKey.ExtendedBy(fromKey, now)
		ledger.Delete(tx, l.st.ownerOf, tokenID)
	} else {
		toKey.TokenID = tokenID
		toKey.ExpiresAt = fromKey.ExpiresAt
		l.recordOwner(tx, to, tokenID)
	}
	ledger.Put(tx, l.st.keys, to, toKey)
	ledger.Put(tx, l.st.keys, from, models.Key{TokenID: 0, ExpiresAt: now})
	l.clearApproval(tx, tokenID)

	tx.Emit(l.address, events.KindTransfer, events.Transfer{From: from, To: to, TokenID: tokenID})

	if err := l.chargeAtLeast(ctx, c, fee, op); err != nil {
		return err
	}

	l.committed(tx, "key transferred",
		"from", from.Hex(),
		"holder", to.Hex(),
		"token_id", tokenID,
		"fee", fee.String(),
	)
	l.record(tx, func(m *metrics.Metrics) {
		m.IncrementTransferred()
		m.AddFee(fee)
	})
	return nil
}
