package client

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/box"

	"github.com/blueshift/inbox/internal/signature"
)

// ErrNoIdentity is returned by LoadIdentity when the key file does not exist.
var ErrNoIdentity = errors.New("no identity, run keygen first")

// Identity holds the signing key that proves inbox ownership and the box key
// pair messages are sealed to.
type Identity struct {
	Signing   ed25519.PrivateKey
	BoxPublic [32]byte
	BoxSecret [32]byte
}

type identityFile struct {
	SigningKey string `json:"signing_key"`
	BoxPublic  string `json:"box_public"`
	BoxSecret  string `json:"box_secret"`
}

// GenerateIdentity creates fresh signing and box key pairs.
func GenerateIdentity() (*Identity, error) {
	_, signing, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	pub, sec, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate box key: %w", err)
	}
	return &Identity{Signing: signing, BoxPublic: *pub, BoxSecret: *sec}, nil
}

// PublicKey is the base-58 signing public key, the form the ledger stores.
func (id *Identity) PublicKey() string {
	return signature.EncodePublicKey(id.Signing.Public().(ed25519.PublicKey))
}

// EncryptionKey is the base64 box public key, the form profiles expose as enc_pk.
func (id *Identity) EncryptionKey() string {
	return base64.StdEncoding.EncodeToString(id.BoxPublic[:])
}

// Sign returns the base-58 signature of msg.
func (id *Identity) Sign(msg string) string {
	return signature.Sign(id.Signing, []byte(msg))
}

// Save writes the identity to path with owner-only permissions.
func (id *Identity) Save(path string) error {
	raw, err := json.MarshalIndent(identityFile{
		SigningKey: base58.Encode(id.Signing),
		BoxPublic:  base64.StdEncoding.EncodeToString(id.BoxPublic[:]),
		BoxSecret:  base64.StdEncoding.EncodeToString(id.BoxSecret[:]),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// LoadIdentity reads an identity written by Save.
func LoadIdentity(path string) (*Identity, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var f identityFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}

	signing, err := base58.Decode(f.SigningKey)
	if err != nil || len(signing) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("parse key file: bad signing key")
	}
	id := &Identity{Signing: ed25519.PrivateKey(signing)}
	if err := decodeKey(f.BoxPublic, &id.BoxPublic); err != nil {
		return nil, fmt.Errorf("parse key file: box public: %w", err)
	}
	if err := decodeKey(f.BoxSecret, &id.BoxSecret); err != nil {
		return nil, fmt.Errorf("parse key file: box secret: %w", err)
	}
	return id, nil
}

func decodeKey(s string, dst *[32]byte) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("want %d bytes, got %d", len(dst), len(raw))
	}
	copy(dst[:], raw)
	return nil
}
