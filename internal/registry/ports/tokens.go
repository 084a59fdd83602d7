package ports

import (
	"keyledger/internal/lock/ports"
	"keyledger/pkg/domain"
)

// TokenDirectory resolves a currency address to its token ledger.
// This is a hexagonal architecture port: the registry depends on it and the
// asset package is plugged in through an adapter.
type TokenDirectory interface {
	Token(addr domain.Address) (ports.TokenLedger, bool)
}
