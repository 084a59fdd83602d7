package models

import (
	"math/big"
	"time"

	"keyledger/pkg/domain"
)

// PoolRecord is the registry's bookkeeping for one pool it created.
//
// Invariants:
//   - Deployed is set once at creation and never cleared, including after the
//     pool is decommissioned
//   - TotalSales and YieldedDiscountTokens only grow
type PoolRecord struct {
	Address               domain.Address `json:"address"`
	Owner                 domain.Address `json:"owner"`
	Deployed              bool           `json:"deployed"`
	TotalSales            *big.Int       `json:"total_sales"`
	YieldedDiscountTokens *big.Int       `json:"yielded_discount_tokens"`
	CreatedAt             time.Time      `json:"created_at"`
}

// Clone returns a copy that shares no big.Int with r.
func (r PoolRecord) Clone() PoolRecord {
	r.TotalSales = new(big.Int).Set(r.TotalSales)
	r.YieldedDiscountTokens = new(big.Int).Set(r.YieldedDiscountTokens)
	return r
}

// Totals aggregates activity across every registered pool.
type Totals struct {
	GrossNetworkProduct  *big.Int `json:"gross_network_product"`
	TotalDiscountGranted *big.Int `json:"total_discount_granted"`
}

func (t Totals) Clone() Totals {
	return Totals{
		GrossNetworkProduct:  new(big.Int).Set(t.GrossNetworkProduct),
		TotalDiscountGranted: new(big.Int).Set(t.TotalDiscountGranted),
	}
}

// Defaults are the display values pools fall back to when they set no override.
type Defaults struct {
	BaseTokenURI string `json:"base_token_uri"`
	TokenSymbol  string `json:"token_symbol"`
}

// KeyView is one holder's key in one pool as served to readers.
type KeyView struct {
	Pool      domain.Address `json:"pool"`
	Holder    domain.Address `json:"holder"`
	TokenID   uint64         `json:"token_id,omitempty"`
	TokenURI  string         `json:"token_uri,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
	Valid     bool           `json:"valid"`
}
