// Package signature checks detached ed25519 signatures whose key and
// signature arrive as base-58 text.
package signature

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Verify reports whether signatureB58 is a valid signature of message by the
// key publicKeyB58. Malformed encodings or wrong lengths simply fail.
func Verify(publicKeyB58, signatureB58 string, message []byte) bool {
	pub, err := base58.Decode(publicKeyB58)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base58.Decode(signatureB58)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}

// Sign produces the base-58 signature Verify accepts. Clients and tests use it.
func Sign(priv ed25519.PrivateKey, message []byte) string {
	return base58.Encode(ed25519.Sign(priv, message))
}

// EncodePublicKey returns the base-58 text form of pub.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}
