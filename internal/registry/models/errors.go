package models

import (
	"errors"

	dErrors "keyledger/pkg/domain-errors"
)

var (
	ErrUnknownPool   = errors.New("unknown pool")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotArchived   = errors.New("pool is not archived")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrPoolNotFound  = errors.New("pool not found")
)

var codes = map[error]dErrors.Code{
	ErrUnknownPool:   dErrors.CodeForbidden,
	ErrUnauthorized:  dErrors.CodeForbidden,
	ErrNotArchived:   dErrors.CodeNotFound,
	ErrInvalidAmount: dErrors.CodeBadRequest,
	ErrPoolNotFound:  dErrors.CodeNotFound,
}

// Fail wraps a registry failure kind with its domain code.
func Fail(kind error, op string) error {
	code, ok := codes[kind]
	if !ok {
		code = dErrors.CodeInternal
	}
	return dErrors.Wrap(kind, code, op)
}
