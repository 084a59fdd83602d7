package lock

import (
	"context"
	"errors"
	"math/big"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
)

func (l *Lock) isNative() bool {
	return l.token == nil
}

// balance is the pool's holding in its own currency.
func (l *Lock) balance(ctx context.Context) *big.Int {
	if l.isNative() {
		return l.bank.BalanceOf(ctx, l.address)
	}
	return l.token.BalanceOf(ctx, l.address)
}

// chargeAtLeast collects amount from the caller. Native payments were already
// moved in by run, so only the attached value is checked; over-payment is kept.
// Token payments are pulled with the caller's allowance and verified against
// the pool's balance, since a token's own success report is not trusted.
func (l *Lock) chargeAtLeast(ctx context.Context, c call, amount *big.Int, op string) error {
	if amount.Sign() <= 0 {
		return nil
	}
	if l.isNative() {
		if c.paid.Cmp(amount) < 0 {
			return models.Fail(models.ErrInsufficientPayment, op)
		}
		return nil
	}

	before := l.token.BalanceOf(ctx, l.address)
	if err := l.token.TransferFrom(l.outbound(ctx), c.caller, l.address, amount); err != nil {
		return dErrors.Wrap(errors.Join(models.ErrInsufficientPayment, err), dErrors.CodePaymentRequired, op)
	}
	after := l.token.BalanceOf(ctx, l.address)
	if new(big.Int).Sub(after, before).Cmp(amount) != 0 {
		return models.Fail(models.ErrPaymentVerification, op)
	}
	return nil
}

// payOut sends amount of the pool's currency to to. Token payouts are verified
// the same way as charges.
func (l *Lock) payOut(ctx context.Context, to domain.Address, amount *big.Int, op string) error {
	if amount.Sign() <= 0 {
		return nil
	}
	if l.isNative() {
		if err := l.bank.Send(l.outbound(ctx), to, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeOf(err), op+": payout")
		}
		return nil
	}

	before := l.token.BalanceOf(ctx, l.address)
	if err := l.token.Transfer(l.outbound(ctx), to, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeOf(err), op+": payout")
	}
	after := l.token.BalanceOf(ctx, l.address)
	if new(big.Int).Sub(before, after).Cmp(amount) != 0 {
		return models.Fail(models.ErrPaymentVerification, op+": payout")
	}
	return nil
}

// Balance returns the pool's holding in its currency.
func (l *Lock) Balance(ctx context.Context) *big.Int {
	var out *big.Int
	_ = l.view(ctx, func(ctx context.Context) error {
		out = l.balance(ctx)
		return nil
	})
	return out
}

// Currency is the zero address for native pools, otherwise the token's address.
func (l *Lock) Currency(ctx context.Context) domain.Address {
	var out domain.Address
	_ = l.view(ctx, func(context.Context) error {
		out = l.st.currency
		return nil
	})
	return out
}

// KeyPrice returns the current unit price.
func (l *Lock) KeyPrice(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = l.view(ctx, func(context.Context) error {
		out.Set(l.st.keyPrice)
		return nil
	})
	return out
}
