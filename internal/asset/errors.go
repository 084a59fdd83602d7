package asset

import (
	"errors"
	"math/big"

	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("amount must be non-negative")
	ErrInvalidRecipient      = errors.New("recipient must not be the zero address")
	ErrNotIssuer             = errors.New("only the issuer may mint")
)

func checkTransfer(to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return dErrors.Wrap(ErrInvalidAmount, dErrors.CodeInvalidInput, "invalid amount")
	}
	if to.IsZero() {
		return dErrors.Wrap(ErrInvalidRecipient, dErrors.CodeInvalidInput, "invalid recipient")
	}
	return nil
}

func balance(m map[domain.Address]*big.Int, addr domain.Address) *big.Int {
	if v, ok := m[addr]; ok {
		return v
	}
	return new(big.Int)
}
