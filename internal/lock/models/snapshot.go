package models

import (
	"math/big"
	"time"

	"keyledger/pkg/domain"
)

// Snapshot is a point-in-time view of a pool used by read APIs and the
// tombstone archive.
type Snapshot struct {
	Address            domain.Address   `json:"address" cbor:"1,keyasint"`
	Owner              domain.Address   `json:"owner" cbor:"2,keyasint"`
	Name               string           `json:"name" cbor:"3,keyasint"`
	Symbol             string           `json:"symbol" cbor:"4,keyasint"`
	BaseTokenURI       string           `json:"base_token_uri" cbor:"5,keyasint"`
	Currency           domain.Address   `json:"currency" cbor:"6,keyasint"`
	KeyPrice           *big.Int         `json:"key_price" cbor:"7,keyasint"`
	MaxNumberOfKeys    uint64           `json:"max_number_of_keys" cbor:"8,keyasint"`
	ExpirationDuration time.Duration    `json:"expiration_duration" cbor:"9,keyasint"`
	TotalSupply        uint64           `json:"total_supply" cbor:"10,keyasint"`
	NumberOfOwners     int              `json:"number_of_owners" cbor:"11,keyasint"`
	Status             Status           `json:"status" cbor:"12,keyasint"`
	TransferFee        Ratio            `json:"transfer_fee" cbor:"13,keyasint"`
	RefundPenalty      Ratio            `json:"refund_penalty" cbor:"14,keyasint"`
	Balance            *big.Int         `json:"balance" cbor:"15,keyasint"`
	Owners             []domain.Address `json:"owners,omitempty" cbor:"16,keyasint,omitempty"`
	TakenAt            time.Time        `json:"taken_at" cbor:"17,keyasint"`
}
