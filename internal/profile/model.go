package profile

const (
	// MaxHandleLen is the largest handle the profile program accepts.
	MaxHandleLen = 32
	// MaxAllowlistLen is the largest allowlist the profile program accepts.
	MaxAllowlistLen = 32
	// EncryptionKeyLen is the size of the opaque end-to-end encryption key.
	EncryptionKeyLen = 32
)

// Record is a decoded profile account as stored on the ledger.
type Record struct {
	Owner         PublicKey
	Handle        string
	EncryptionKey [EncryptionKeyLen]byte
	Allowlist     []PublicKey
	Bump          byte
}

// ValidHandle reports whether handle fits the length bounds enforced on-chain.
func ValidHandle(handle string) bool {
	return len(handle) > 0 && len(handle) <= MaxHandleLen
}
