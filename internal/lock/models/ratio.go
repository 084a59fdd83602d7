package models

import "math/big"

// Ratio is a numerator/denominator pair applied to amounts.
type Ratio struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

var (
	// DefaultTransferFee charges nothing on transfer.
	DefaultTransferFee = Ratio{Numerator: 0, Denominator: 100}
	// DefaultRefundPenalty withholds a tenth of the key price on cancellation.
	DefaultRefundPenalty = Ratio{Numerator: 1, Denominator: 10}
)

// NewRatio rejects a zero denominator.
func NewRatio(numerator, denominator uint64) (Ratio, error) {
	if denominator == 0 {
		return Ratio{}, Fail(ErrInvalidRatio, "ratio denominator must be non-zero")
	}
	return Ratio{Numerator: numerator, Denominator: denominator}, nil
}

// Apply returns amount × numerator / denominator, rounded down.
func (r Ratio) Apply(amount *big.Int) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(r.Numerator))
	return out.Quo(out, new(big.Int).SetUint64(r.Denominator))
}
