package models

import (
	"math/big"
	"time"

	"keyledger/pkg/domain"
)

// MaxExpirationDuration caps how long a single purchase can last.
const MaxExpirationDuration = 100 * 365 * 24 * time.Hour

// Config is the policy fixed when a pool is created. Price is the only field
// the owner may change later.
type Config struct {
	Name               string         `json:"name"`
	Currency           domain.Address `json:"currency"`
	KeyPrice           *big.Int       `json:"key_price"`
	MaxNumberOfKeys    uint64         `json:"max_number_of_keys"`
	ExpirationDuration time.Duration  `json:"expiration_duration"`
}

// IsNative reports whether the pool settles in the native unit.
func (c Config) IsNative() bool {
	return c.Currency.IsZero()
}

// Validate checks the static parts of the config. Token currencies are
// validated against the token ledger at construction.
func (c Config) Validate() error {
	if c.ExpirationDuration <= 0 || c.ExpirationDuration > MaxExpirationDuration {
		return Fail(ErrInvalidDuration, "expiration duration must be within (0, 100 years]")
	}
	if c.KeyPrice == nil || c.KeyPrice.Sign() < 0 {
		return Fail(ErrInvalidPrice, "key price must be non-negative")
	}
	return nil
}
