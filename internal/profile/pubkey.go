package profile

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeyLen is the size of a ledger public key.
const PublicKeyLen = 32

// ErrInvalidPublicKey is returned when a textual key does not decode to 32 bytes.
var ErrInvalidPublicKey = errors.New("invalid public key")

// PublicKey is a raw 32-byte ledger key. Its canonical text form is base-58.
type PublicKey [PublicKeyLen]byte

// ParsePublicKey decodes the base-58 text form of a key.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != PublicKeyLen {
		return pk, fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for compile-time constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the canonical base-58 encoding.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns a copy of the raw key.
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeyLen)
	copy(out, pk[:])
	return out
}
