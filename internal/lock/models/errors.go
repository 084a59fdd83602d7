package models

import (
	"errors"

	dErrors "keyledger/pkg/domain-errors"
)

// Failure kinds reported by pool operations. Every kind is wrapped with a
// domain code by Fail, so callers can branch with errors.Is or dErrors.HasCode.
var (
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInsufficientPayment   = errors.New("insufficient payment")
	ErrPaymentVerification   = errors.New("payment verification failed")
	ErrSoldOut               = errors.New("sold out")
	ErrLockNotAlive          = errors.New("lock is not alive")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyOwnsKey        = errors.New("already owns key")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrNonCanonicalSignature = errors.New("non-canonical signature")
	ErrInvalidRatio          = errors.New("invalid ratio")
	ErrNoSuchKey             = errors.New("no such key")
	ErrReceiverRejected      = errors.New("receiver did not acknowledge key")
	ErrDisableFirst          = errors.New("lock must be disabled first")
	ErrDecommissioned        = errors.New("lock is decommissioned")
	ErrInvalidDuration       = errors.New("invalid expiration duration")
	ErrInvalidCurrency       = errors.New("invalid currency")
	ErrInvalidPrice          = errors.New("invalid key price")
	ErrPageOutOfRange        = errors.New("page out of range")
	ErrNoOutstandingKeys     = errors.New("no outstanding keys")
	ErrPaymentNotAccepted    = errors.New("payment not accepted")
	ErrLengthMismatch        = errors.New("batch length mismatch")
	ErrApproveSelf           = errors.New("cannot approve self")
	ErrInsufficientBalance   = errors.New("insufficient lock balance")
)

var codes = map[error]dErrors.Code{
	ErrInvalidAddress:        dErrors.CodeInvalidInput,
	ErrInsufficientPayment:   dErrors.CodePaymentRequired,
	ErrPaymentVerification:   dErrors.CodePaymentRequired,
	ErrSoldOut:               dErrors.CodeConflict,
	ErrLockNotAlive:          dErrors.CodeConflict,
	ErrUnauthorized:          dErrors.CodeForbidden,
	ErrAlreadyOwnsKey:        dErrors.CodeConflict,
	ErrInvalidSignature:      dErrors.CodeUnauthorized,
	ErrNonCanonicalSignature: dErrors.CodeUnauthorized,
	ErrInvalidRatio:          dErrors.CodeValidation,
	ErrNoSuchKey:             dErrors.CodeNotFound,
	ErrReceiverRejected:      dErrors.CodeConflict,
	ErrDisableFirst:          dErrors.CodeInvariantViolation,
	ErrDecommissioned:        dErrors.CodeInvariantViolation,
	ErrInvalidDuration:       dErrors.CodeValidation,
	ErrInvalidCurrency:       dErrors.CodeValidation,
	ErrInvalidPrice:          dErrors.CodeValidation,
	ErrPageOutOfRange:        dErrors.CodeBadRequest,
	ErrNoOutstandingKeys:     dErrors.CodeNotFound,
	ErrPaymentNotAccepted:    dErrors.CodeBadRequest,
	ErrLengthMismatch:        dErrors.CodeBadRequest,
	ErrApproveSelf:           dErrors.CodeBadRequest,
	ErrInsufficientBalance:   dErrors.CodeConflict,
}

// Fail wraps a failure kind with its domain code. op names the rejected operation.
func Fail(kind error, op string) error {
	code, ok := codes[kind]
	if !ok {
		code = dErrors.CodeInternal
	}
	return dErrors.Wrap(kind, code, op)
}
