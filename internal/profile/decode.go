package profile

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DiscriminatorLen is the size of the leading account type tag.
const DiscriminatorLen = 8

// ErrMalformedAccount is returned for any account payload that cannot be decoded.
var ErrMalformedAccount = errors.New("malformed account")

// Discriminator is the type tag the profile program writes at the start of
// every profile account: the first 8 bytes of sha256("account:Profile").
var Discriminator = func() [DiscriminatorLen]byte {
	var d [DiscriminatorLen]byte
	sum := sha256.Sum256([]byte("account:Profile"))
	copy(d[:], sum[:DiscriminatorLen])
	return d
}()

// minAccountLen covers the discriminator, owner, both length prefixes and the
// encryption key, i.e. a record with an empty handle and allowlist.
const minAccountLen = DiscriminatorLen + PublicKeyLen + 4 + EncryptionKeyLen + 4

// Decode parses a raw profile account. The discriminator is skipped without
// being checked; use DecodeStrict to reject accounts of another type.
// A missing trailing bump byte decodes as zero.
func Decode(data []byte) (Record, error) {
	if len(data) < minAccountLen {
		return Record{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedAccount, len(data), minAccountLen)
	}

	r := reader{buf: data, off: DiscriminatorLen}
	var rec Record

	owner, err := r.next(PublicKeyLen)
	if err != nil {
		return Record{}, fmt.Errorf("owner: %w", err)
	}
	copy(rec.Owner[:], owner)

	handleLen, err := r.u32()
	if err != nil {
		return Record{}, fmt.Errorf("handle length: %w", err)
	}
	handle, err := r.next(uint64(handleLen))
	if err != nil {
		return Record{}, fmt.Errorf("handle: %w", err)
	}
	if !utf8.Valid(handle) {
		return Record{}, fmt.Errorf("%w: handle is not valid utf-8", ErrMalformedAccount)
	}
	rec.Handle = string(handle)

	encKey, err := r.next(EncryptionKeyLen)
	if err != nil {
		return Record{}, fmt.Errorf("encryption key: %w", err)
	}
	copy(rec.EncryptionKey[:], encKey)

	count, err := r.u32()
	if err != nil {
		return Record{}, fmt.Errorf("allowlist length: %w", err)
	}
	entries, err := r.next(uint64(count) * PublicKeyLen)
	if err != nil {
		return Record{}, fmt.Errorf("allowlist: %w", err)
	}
	if count > 0 {
		rec.Allowlist = make([]PublicKey, count)
		for i := range rec.Allowlist {
			copy(rec.Allowlist[i][:], entries[i*PublicKeyLen:])
		}
	}

	if r.off < len(r.buf) {
		rec.Bump = r.buf[r.off]
	}
	return rec, nil
}

// DecodeStrict is Decode plus a check that the discriminator matches the
// profile account type.
func DecodeStrict(data []byte) (Record, error) {
	if len(data) < DiscriminatorLen || !bytes.Equal(data[:DiscriminatorLen], Discriminator[:]) {
		return Record{}, fmt.Errorf("%w: unexpected discriminator", ErrMalformedAccount)
	}
	return Decode(data)
}

type reader struct {
	buf []byte
	off int
}

// next returns the following n bytes. n is unsigned and 64-bit so that a
// hostile length prefix cannot overflow the bounds check.
func (r *reader) next(n uint64) ([]byte, error) {
	if n > uint64(len(r.buf)-r.off) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedAccount, n, r.off, len(r.buf)-r.off)
	}
	out := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return out, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
