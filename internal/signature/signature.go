// Package signature verifies detached secp256k1 signatures for delegated
// authorization.
//
// Signatures are 65 bytes laid out as r‖s‖v with v in {27, 28}. Messages are
// signed in prefixed form, keccak256("\x19Ethereum Signed Message:\n32" ‖ hash), so a
// ledger authorization can never double as a signature for another protocol.
// Only canonical signatures with s in the lower half of the curve order are
// accepted.
package signature

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"keyledger/pkg/domain"
)

// Length is the size of an encoded signature.
const Length = 65

const messagePrefix = "\x19Ethereum Signed Message:\n32"

var (
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrMalleableSignature = errors.New("non-canonical signature: s is in the upper half order")
)

// Hash is a keccak256 digest.
type Hash [32]byte

func (h Hash) Bytes() []byte { return h[:] }

// Keccak256 hashes the concatenation of parts.
func Keccak256(parts ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		d.Write(p)
	}
	var h Hash
	d.Sum(h[:0])
	return h
}

// Uint256 encodes n as a 32-byte big-endian word.
func Uint256(n uint64) []byte {
	out := make([]byte, 32)
	binary.BigEndian.PutUint64(out[24:], n)
	return out
}

// PrefixedHash returns the digest actually signed for a message hash.
func PrefixedHash(h Hash) Hash {
	return Keccak256([]byte(messagePrefix), h[:])
}

// PubkeyToAddress derives the ledger identity of a public key.
func PubkeyToAddress(pub *secp256k1.PublicKey) domain.Address {
	h := Keccak256(pub.SerializeUncompressed()[1:])
	return domain.BytesToAddress(h[12:])
}

// GenerateKey creates a fresh signing key and its address.
func GenerateKey() (*secp256k1.PrivateKey, domain.Address, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, domain.Address{}, fmt.Errorf("generate key: %w", err)
	}
	return priv, PubkeyToAddress(priv.PubKey()), nil
}

// Sign produces a canonical r‖s‖v signature over digest.
func Sign(priv *secp256k1.PrivateKey, digest Hash) []byte {
	compact := ecdsa.SignCompact(priv, digest[:], false)
	out := make([]byte, Length)
	copy(out[:64], compact[1:])
	out[64] = compact[0]
	return out
}

// SignMessageHash signs the prefixed form of h.
func SignMessageHash(priv *secp256k1.PrivateKey, h Hash) []byte {
	return Sign(priv, PrefixedHash(h))
}

// Recover returns the address that produced sig over digest.
func Recover(digest Hash, sig []byte) (domain.Address, error) {
	if len(sig) != Length {
		return domain.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	v := sig[64]
	if v != 27 && v != 28 {
		return domain.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, v)
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() {
		return domain.Address{}, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	if s.IsOverHalfOrder() {
		return domain.Address{}, ErrMalleableSignature
	}

	compact := make([]byte, Length)
	compact[0] = v
	copy(compact[1:], sig[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return PubkeyToAddress(pub), nil
}

// RecoverMessageHash recovers the signer of the prefixed form of h.
func RecoverMessageHash(h Hash, sig []byte) (domain.Address, error) {
	return Recover(PrefixedHash(h), sig)
}
