// Package ports defines the collaborators a pool depends on.
// Each is injected at construction so tests can substitute doubles.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"math/big"

	"keyledger/pkg/domain"
)

// Registry is the pool's callback into the registry that created it. The
// registry identifies the calling pool by the caller in ctx.
type Registry interface {
	ComputeAvailableDiscountFor(ctx context.Context, holder domain.Address, keyPrice *big.Int) (discount *big.Int, tokens *big.Int, err error)
	RecordKeyPurchase(ctx context.Context, value *big.Int, referrer domain.Address) error
	RecordConsumedDiscount(ctx context.Context, discount *big.Int, tokens *big.Int) error
	GlobalBaseTokenURI(ctx context.Context) string
	GlobalTokenSymbol(ctx context.Context) string
}

// NativeBank moves native units. Send debits the caller in ctx.
type NativeBank interface {
	BalanceOf(ctx context.Context, addr domain.Address) *big.Int
	Send(ctx context.Context, to domain.Address, amount *big.Int) error
}

// TokenLedger is a fungible token a pool may be priced in. Transfer debits the
// caller in ctx; TransferFrom spends the caller's allowance.
type TokenLedger interface {
	TotalSupply(ctx context.Context) *big.Int
	BalanceOf(ctx context.Context, holder domain.Address) *big.Int
	Transfer(ctx context.Context, to domain.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, from, to domain.Address, amount *big.Int) error
}

// Accounts resolves programmatic recipients for safe transfers.
type Accounts interface {
	IsProgrammatic(addr domain.Address) bool
	NotifyKeyReceived(ctx context.Context, to, operator, from domain.Address, tokenID uint64, data []byte) ([4]byte, error)
}
