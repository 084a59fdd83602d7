package lock

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
	"keyledger/pkg/requestcontext"
)

// Name is the pool's display name.
func (l *Lock) Name(ctx context.Context) string {
	var name string
	_ = l.view(ctx, func(context.Context) error {
		name = l.st.name
		return nil
	})
	return name
}

// Symbol is the pool's override or the registry default.
func (l *Lock) Symbol(ctx context.Context) string {
	var symbol string
	_ = l.view(ctx, func(ctx context.Context) error {
		symbol = l.symbol(ctx)
		return nil
	})
	return symbol
}

func (l *Lock) symbol(ctx context.Context) string {
	if l.st.symbol != "" {
		return l.st.symbol
	}
	return l.registry.GlobalTokenSymbol(ctx)
}

func (l *Lock) baseTokenURI(ctx context.Context) string {
	if l.st.baseURI != "" {
		return l.st.baseURI
	}
	return l.registry.GlobalBaseTokenURI(ctx)
}

// TokenURI is base URI ‖ pool address ‖ "/" ‖ token-id.
func (l *Lock) TokenURI(ctx context.Context, tokenID uint64) string {
	var uri string
	_ = l.view(ctx, func(ctx context.Context) error {
		uri = l.baseTokenURI(ctx) + l.address.Hex() + "/" + strconv.FormatUint(tokenID, 10)
		return nil
	})
	return uri
}

// Snapshot returns the pool's current state. withOwners adds the participation log.
func (l *Lock) Snapshot(ctx context.Context, withOwners bool) models.Snapshot {
	var snap models.Snapshot
	_ = l.view(ctx, func(ctx context.Context) error {
		snap = l.snapshot(ctx, requestcontext.Now(ctx), withOwners)
		return nil
	})
	return snap
}

func (l *Lock) snapshot(ctx context.Context, now time.Time, withOwners bool) models.Snapshot {
	snap := models.Snapshot{
		Address:            l.address,
		Owner:              l.st.owner,
		Name:               l.st.name,
		Symbol:             l.symbol(ctx),
		BaseTokenURI:       l.baseTokenURI(ctx),
		Currency:           l.st.currency,
		KeyPrice:           new(big.Int).Set(l.st.keyPrice),
		MaxNumberOfKeys:    l.st.maxKeys,
		ExpirationDuration: l.st.duration,
		TotalSupply:        l.st.sold,
		NumberOfOwners:     len(l.st.owners),
		Status:             l.st.status,
		TransferFee:        l.st.transferFee,
		RefundPenalty:      l.st.refundPenalty,
		Balance:            l.balance(ctx),
		TakenAt:            now,
	}
	if withOwners {
		snap.Owners = append([]domain.Address{}, l.st.owners...)
	}
	return snap
}
