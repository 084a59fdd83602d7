// Package account tracks which identities are programmatic accounts and the
// hooks they expose to the ledger.
//
// A plain identity has no hooks: it can hold keys and balances but never runs code.
// A programmatic account may implement KeyReceiver, PaymentReceiver or both. Hooks
// run inside the calling ledger transaction and may call back into any pool.
package account

import (
	"context"
	"math/big"
	"sync"

	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
)

// KeyReceiver is notified when a key is safely transferred to the account. It
// accepts the key by returning domain.KeyReceivedSelector.
type KeyReceiver interface {
	OnKeyReceived(ctx context.Context, operator, from domain.Address, tokenID uint64, data []byte) ([4]byte, error)
}

// PaymentReceiver is notified when native funds arrive at the account.
type PaymentReceiver interface {
	OnPaymentReceived(ctx context.Context, from domain.Address, amount *big.Int) error
}

// Program is any hook implementation. It must implement at least one receiver interface
// to be useful; an empty Program still marks the account as programmatic.
type Program any

// Directory maps identities to their programs.
type Directory struct {
	mu       sync.RWMutex
	programs map[domain.Address]Program
}

func NewDirectory() *Directory {
	return &Directory{programs: make(map[domain.Address]Program)}
}

// Register marks addr as programmatic.
func (d *Directory) Register(addr domain.Address, program Program) error {
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot register the zero address")
	}
	if program == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "program is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.programs[addr]; exists {
		return dErrors.New(dErrors.CodeConflict, "account already registered")
	}
	d.programs[addr] = program
	return nil
}

// IsProgrammatic reports whether addr runs code.
func (d *Directory) IsProgrammatic(addr domain.Address) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.programs[addr]
	return ok
}

// NotifyKeyReceived invokes the account's KeyReceiver. An account without one
// returns an empty selector, which callers treat as a rejection.
func (d *Directory) NotifyKeyReceived(ctx context.Context, to, operator, from domain.Address, tokenID uint64, data []byte) ([4]byte, error) {
	receiver, ok := d.program(to).(KeyReceiver)
	if !ok {
		return [4]byte{}, nil
	}
	return receiver.OnKeyReceived(ctx, operator, from, tokenID, data)
}

// NotifyPaymentReceived invokes the account's PaymentReceiver, if any.
func (d *Directory) NotifyPaymentReceived(ctx context.Context, to, from domain.Address, amount *big.Int) error {
	receiver, ok := d.program(to).(PaymentReceiver)
	if !ok {
		return nil
	}
	return receiver.OnPaymentReceived(ctx, from, amount)
}

func (d *Directory) program(addr domain.Address) Program {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.programs[addr]
}
