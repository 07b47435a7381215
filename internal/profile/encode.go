package profile

import "encoding/binary"

// Encode lays out a record the way the profile program stores it, including
// the discriminator and the trailing bump. Fakes and fixtures use it to
// produce account data; the service itself only ever decodes.
func Encode(rec Record) []byte {
	size := DiscriminatorLen + PublicKeyLen + 4 + len(rec.Handle) + EncryptionKeyLen + 4 + PublicKeyLen*len(rec.Allowlist) + 1
	out := make([]byte, 0, size)
	out = append(out, Discriminator[:]...)
	out = append(out, rec.Owner[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(rec.Handle)))
	out = append(out, rec.Handle...)
	out = append(out, rec.EncryptionKey[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(rec.Allowlist)))
	for _, pk := range rec.Allowlist {
		out = append(out, pk[:]...)
	}
	return append(out, rec.Bump)
}
