package domain

import (
	"encoding/hex"
	"strings"

	dErrors "keyledger/pkg/domain-errors"
)

// AddressLength is the byte length of a ledger identity.
const AddressLength = 20

// Address identifies a holder, a pool, a token ledger or the registry.
// The zero value is the null identity.
type Address [AddressLength]byte

// ZeroAddress is the null identity. It never holds keys.
var ZeroAddress Address

// ParseAddress validates a hex address with an optional 0x prefix.
// Returns CodeInvalidInput for anything that is not exactly 20 hex bytes.
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 2*AddressLength {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "address must be 20 hex-encoded bytes")
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return Address{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "address is not valid hex")
	}
	return BytesToAddress(b), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress keeps the last 20 bytes of b, left-padding shorter input.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Hex returns the lowercase 0x-prefixed form.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether a is the null identity.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// KeyReceivedSelector is the acknowledgment a programmatic recipient returns to
// accept a safely transferred key.
var KeyReceivedSelector = [4]byte{0x15, 0x0b, 0x7a, 0x02}
