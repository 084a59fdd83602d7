// Package asset holds the value ledgers pools settle in: the native bank and
// fungible tokens. Balances are journaled in the shared ledger transaction so a
// failed operation never leaves a partial payment behind.
package asset

import (
	"context"
	"math/big"

	"keyledger/internal/ledger"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/requestcontext"
)

// PaymentNotifier runs the recipient's payment hook, if it has one.
type PaymentNotifier interface {
	NotifyPaymentReceived(ctx context.Context, to, from domain.Address, amount *big.Int) error
}

// Bank keeps native balances.
type Bank struct {
	coord    *ledger.Coordinator
	notifier PaymentNotifier
	balances map[domain.Address]*big.Int
	supply   *big.Int
}

// BankOption configures the Bank.
type BankOption func(*Bank)

// WithPaymentNotifier enables recipient hooks on Send.
func WithPaymentNotifier(n PaymentNotifier) BankOption {
	return func(b *Bank) {
		b.notifier = n
	}
}

func NewBank(coord *ledger.Coordinator, opts ...BankOption) *Bank {
	b := &Bank{
		coord:    coord,
		balances: make(map[domain.Address]*big.Int),
		supply:   new(big.Int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mint credits new native units to an address. Used for funding identities.
func (b *Bank) Mint(ctx context.Context, to domain.Address, amount *big.Int) error {
	if err := checkTransfer(to, amount); err != nil {
		return err
	}
	return b.coord.RunInTx(ctx, "bank.mint", func(ctx context.Context, tx *ledger.Tx) error {
		ledger.Put(tx, b.balances, to, new(big.Int).Add(balance(b.balances, to), amount))
		ledger.Set(tx, &b.supply, new(big.Int).Add(b.supply, amount))
		return nil
	})
}

// BalanceOf returns a copy of addr's native balance.
func (b *Bank) BalanceOf(ctx context.Context, addr domain.Address) *big.Int {
	out := new(big.Int)
	_ = b.coord.View(ctx, func(context.Context) error {
		out.Set(balance(b.balances, addr))
		return nil
	})
	return out
}

// Supply returns the total native units minted.
func (b *Bank) Supply(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = b.coord.View(ctx, func(context.Context) error {
		out.Set(b.supply)
		return nil
	})
	return out
}

// Send moves amount from the caller to to. Balances are final before the
// recipient's payment hook runs; a hook error reverts the send.
func (b *Bank) Send(ctx context.Context, to domain.Address, amount *big.Int) error {
	if err := checkTransfer(to, amount); err != nil {
		return err
	}
	from := requestcontext.Caller(ctx)
	return b.coord.RunInTx(ctx, "bank.send", func(ctx context.Context, tx *ledger.Tx) error {
		if amount.Sign() == 0 {
			return nil
		}
		fromBal := balance(b.balances, from)
		if fromBal.Cmp(amount) < 0 {
			return dErrors.Wrap(ErrInsufficientBalance, dErrors.CodePaymentRequired, "native balance too low")
		}
		ledger.Put(tx, b.balances, from, new(big.Int).Sub(fromBal, amount))
		ledger.Put(tx, b.balances, to, new(big.Int).Add(balance(b.balances, to), amount))

		if b.notifier == nil {
			return nil
		}
		hookCtx := requestcontext.WithPayment(requestcontext.WithCaller(ctx, from), nil)
		if err := b.notifier.NotifyPaymentReceived(hookCtx, to, from, new(big.Int).Set(amount)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "recipient rejected payment")
		}
		return nil
	})
}
