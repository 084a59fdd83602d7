package asset

import (
	"context"
	"math/big"

	"keyledger/internal/ledger"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/requestcontext"
)

type allowanceKey struct {
	owner, spender domain.Address
}

// Token is a fungible balance ledger. The caller in ctx is the owner for
// Approve and Transfer and the spender for TransferFrom.
type Token struct {
	coord      *ledger.Coordinator
	address    domain.Address
	symbol     string
	issuer     domain.Address
	supply     *big.Int
	balances   map[domain.Address]*big.Int
	allowances map[allowanceKey]*big.Int
}

func NewToken(coord *ledger.Coordinator, address domain.Address, symbol string, issuer domain.Address) *Token {
	return &Token{
		coord:      coord,
		address:    address,
		symbol:     symbol,
		issuer:     issuer,
		supply:     new(big.Int),
		balances:   make(map[domain.Address]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

func (t *Token) Address() domain.Address { return t.address }

func (t *Token) Symbol() string { return t.symbol }

func (t *Token) TotalSupply(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = t.coord.View(ctx, func(context.Context) error {
		out.Set(t.supply)
		return nil
	})
	return out
}

func (t *Token) BalanceOf(ctx context.Context, holder domain.Address) *big.Int {
	out := new(big.Int)
	_ = t.coord.View(ctx, func(context.Context) error {
		out.Set(balance(t.balances, holder))
		return nil
	})
	return out
}

func (t *Token) Allowance(ctx context.Context, owner, spender domain.Address) *big.Int {
	out := new(big.Int)
	_ = t.coord.View(ctx, func(context.Context) error {
		if v, ok := t.allowances[allowanceKey{owner, spender}]; ok {
			out.Set(v)
		}
		return nil
	})
	return out
}

// Mint credits new tokens. Only the issuer may mint.
func (t *Token) Mint(ctx context.Context, to domain.Address, amount *big.Int) error {
	if err := checkTransfer(to, amount); err != nil {
		return err
	}
	if requestcontext.Caller(ctx) != t.issuer {
		return dErrors.Wrap(ErrNotIssuer, dErrors.CodeForbidden, "mint not allowed")
	}
	return t.coord.RunInTx(ctx, "token.mint", func(ctx context.Context, tx *ledger.Tx) error {
		ledger.Put(tx, t.balances, to, new(big.Int).Add(balance(t.balances, to), amount))
		ledger.Set(tx, &t.supply, new(big.Int).Add(t.supply, amount))
		return nil
	})
}

// Approve sets the spender's allowance over the caller's balance.
func (t *Token) Approve(ctx context.Context, spender domain.Address, amount *big.Int) error {
	if err := checkTransfer(spender, amount); err != nil {
		return err
	}
	owner := requestcontext.Caller(ctx)
	return t.coord.RunInTx(ctx, "token.approve", func(ctx context.Context, tx *ledger.Tx) error {
		ledger.Put(tx, t.allowances, allowanceKey{owner, spender}, new(big.Int).Set(amount))
		return nil
	})
}

// Transfer moves amount from the caller to to.
func (t *Token) Transfer(ctx context.Context, to domain.Address, amount *big.Int) error {
	if err := checkTransfer(to, amount); err != nil {
		return err
	}
	from := requestcontext.Caller(ctx)
	return t.coord.RunInTx(ctx, "token.transfer", func(ctx context.Context, tx *ledger.Tx) error {
		return t.move(tx, from, to, amount)
	})
}

// TransferFrom moves amount from from to to against the caller's allowance.
func (t *Token) TransferFrom(ctx context.Context, from, to domain.Address, amount *big.Int) error {
	if err := checkTransfer(to, amount); err != nil {
		return err
	}
	spender := requestcontext.Caller(ctx)
	return t.coord.RunInTx(ctx, "token.transfer_from", func(ctx context.Context, tx *ledger.Tx) error {
		key := allowanceKey{from, spender}
		allowed, ok := t.allowances[key]
		if !ok || allowed.Cmp(amount) < 0 {
			return dErrors.Wrap(ErrInsufficientAllowance, dErrors.CodePaymentRequired, "allowance too low")
		}
		ledger.Put(tx, t.allowances, key, new(big.Int).Sub(allowed, amount))
		return t.move(tx, from, to, amount)
	})
}

func (t *Token) move(tx *ledger.Tx, from, to domain.Address, amount *big.Int) error {
	fromBal := balance(t.balances, from)
	if fromBal.Cmp(amount) < 0 {
		return dErrors.Wrap(ErrInsufficientBalance, dErrors.CodePaymentRequired, "token balance too low")
	}
	ledger.Put(tx, t.balances, from, new(big.Int).Sub(fromBal, amount))
	ledger.Put(tx, t.balances, to, new(big.Int).Add(balance(t.balances, to), amount))
	return nil
}
