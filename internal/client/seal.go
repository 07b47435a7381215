package client

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// ErrOpen means a message could not be opened with the given key.
var ErrOpen = errors.New("cannot open message")

// Sealed is a nacl box with its parameters, each base64 encoded.
type Sealed struct {
	Ciphertext string
	Nonce      string
	EPK        string
}

// Seal boxes plaintext to recipient with a one-time ephemeral key, so the
// sender needs no key of its own.
func Seal(plaintext []byte, recipient [32]byte) (Sealed, error) {
	epk, esk, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return Sealed{}, fmt.Errorf("generate ephemeral key: %w", err)
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return Sealed{}, fmt.Errorf("generate nonce: %w", err)
	}
	out := box.Seal(nil, plaintext, &nonce, &recipient, esk)
	return Sealed{
		Ciphertext: base64.StdEncoding.EncodeToString(out),
		Nonce:      base64.StdEncoding.EncodeToString(nonce[:]),
		EPK:        base64.StdEncoding.EncodeToString(epk[:]),
	}, nil
}

// Open reverses Seal using the recipient's box secret key.
func Open(s Sealed, secret [32]byte) ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(s.Ciphertext)
	if err != nil {
		return nil, ErrOpen
	}
	var epk [32]byte
	if err := decodeKey(s.EPK, &epk); err != nil {
		return nil, ErrOpen
	}
	rawNonce, err := base64.StdEncoding.DecodeString(s.Nonce)
	if err != nil || len(rawNonce) != 24 {
		return nil, ErrOpen
	}
	var nonce [24]byte
	copy(nonce[:], rawNonce)
	out, ok := box.Open(nil, ct, &nonce, &epk, &secret)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}
