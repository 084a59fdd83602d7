package asset

import (
	"sync"

	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
)

// Directory indexes the tokens pools may be priced in.
type Directory struct {
	mu     sync.RWMutex
	tokens map[domain.Address]*Token
}

func NewDirectory() *Directory {
	return &Directory{tokens: make(map[domain.Address]*Token)}
}

func (d *Directory) Register(t *Token) error {
	if t == nil || t.Address().IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "token address is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tokens[t.Address()]; exists {
		return dErrors.New(dErrors.CodeConflict, "token already registered")
	}
	d.tokens[t.Address()] = t
	return nil
}

func (d *Directory) Token(addr domain.Address) (*Token, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tokens[addr]
	return t, ok
}
