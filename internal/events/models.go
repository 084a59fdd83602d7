// Package events defines the ledger's observable side effects.
//
// Services emit typed payloads into the current ledger transaction. The coordinator
// stamps them with an ID, a global sequence number and the operation's timestamp, and
// flushes them to a Sink only when the transaction commits. A failed operation emits
// nothing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"keyledger/pkg/domain"
)

// Kind names an event type. Values are stable and appear on the wire.
type Kind string

const (
	KindPoolCreated          Kind = "pool_created"
	KindTransfer             Kind = "transfer"
	KindExpireKeyByOwner     Kind = "expire_key_by_owner"
	KindApproval             Kind = "approval"
	KindApprovalForAll       Kind = "approval_for_all"
	KindPriceChanged         Kind = "price_changed"
	KindTransferFeeChanged   Kind = "transfer_fee_changed"
	KindRefundPenaltyChanged Kind = "refund_penalty_changed"
	KindCancelKey            Kind = "cancel_key"
	KindDisable              Kind = "disable"
	KindDestroy              Kind = "destroy"
	KindDefaultsChanged      Kind = "defaults_changed"
	KindNonceChanged         Kind = "nonce_changed"
	KindWithdrawal           Kind = "withdrawal"
	KindNameChanged          Kind = "name_changed"
	KindSymbolChanged        Kind = "symbol_changed"
	KindBaseURIChanged       Kind = "base_uri_changed"
)

// Event is one committed side effect. Keep it transport-agnostic so stores and
// publishers can fan out.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Sequence  uint64         `json:"sequence"`
	Kind      Kind           `json:"kind"`
	Emitter   domain.Address `json:"emitter"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
	Payload   any            `json:"payload"`
}

// Envelope is the decoded wire form of an Event with the payload left raw.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Sequence  uint64          `json:"sequence"`
	Kind      Kind            `json:"kind"`
	Emitter   domain.Address  `json:"emitter"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode renders the event in its wire form.
func Encode(e Event) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Kind, err)
	}
	return raw, nil
}

// Decode parses the wire form produced by Encode.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}

// DecodePayload unmarshals the raw payload into v.
func (e Envelope) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Sink receives committed events in sequence order. A Sink error aborts the
// transaction that produced the batch.
type Sink interface {
	Publish(ctx context.Context, batch []Event) error
}

// MultiSink publishes to every sink in order and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, batch []Event) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Payloads
// -----------------------------------------------------------------------------

type PoolCreated struct {
	Owner    domain.Address `json:"owner"`
	Pool     domain.Address `json:"pool"`
	Currency domain.Address `json:"currency"`
	KeyPrice *big.Int       `json:"key_price"`
	MaxKeys  uint64         `json:"max_keys"`
	Duration time.Duration  `json:"duration"`
	Name     string         `json:"name"`
}

// Transfer covers issuance (From is the zero address) and ownership moves.
type Transfer struct {
	From    domain.Address `json:"from"`
	To      domain.Address `json:"to"`
	TokenID uint64         `json:"token_id"`
}

type ExpireKeyByOwner struct {
	Holder  domain.Address `json:"holder"`
	TokenID uint64         `json:"token_id"`
}

type Approval struct {
	Owner    domain.Address `json:"owner"`
	Approved domain.Address `json:"approved"`
	TokenID  uint64         `json:"token_id"`
}

type ApprovalForAll struct {
	Owner    domain.Address `json:"owner"`
	Operator domain.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

type PriceChanged struct {
	OldPrice *big.Int `json:"old_price"`
	NewPrice *big.Int `json:"new_price"`
}

type TransferFeeChanged struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

type RefundPenaltyChanged struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

type CancelKey struct {
	TokenID   uint64         `json:"token_id"`
	Holder    domain.Address `json:"holder"`
	SendTo    domain.Address `json:"send_to"`
	Refund    *big.Int       `json:"refund"`
	Delegated bool           `json:"delegated"`
}

type Disable struct{}

type Destroy struct {
	Balance *big.Int       `json:"balance"`
	Owner   domain.Address `json:"owner"`
}

type DefaultsChanged struct {
	BaseTokenURI string `json:"base_token_uri"`
	TokenSymbol  string `json:"token_symbol"`
}

type NonceChanged struct {
	Holder domain.Address `json:"holder"`
	Nonce  uint64         `json:"nonce"`
}

type Withdrawal struct {
	Sender      domain.Address `json:"sender"`
	Beneficiary domain.Address `json:"beneficiary"`
	Amount      *big.Int       `json:"amount"`
}

type NameChanged struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type SymbolChanged struct {
	OldSymbol string `json:"old_symbol"`
	NewSymbol string `json:"new_symbol"`
}

type BaseURIChanged struct {
	OldURI string `json:"old_uri"`
	NewURI string `json:"new_uri"`
}
