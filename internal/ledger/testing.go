package ledger

import "github.com/blueshift/inbox/internal/profile"

// SeedProfile stores rec at its derived address when using the in-memory
// ledger and returns that address.
func SeedProfile(l Ledger, rec profile.Record) profile.PublicKey {
	mem, ok := l.(*inMemoryLedger)
	if !ok {
		return profile.PublicKey{}
	}
	addr, bump, err := ProfileAddress(rec.Handle, mem.programID)
	if err != nil {
		return profile.PublicKey{}
	}
	if rec.Bump == 0 {
		rec.Bump = bump
	}
	SeedAccount(l, addr, profile.Encode(rec))
	return addr
}

// SeedAccount stores raw account data at addr when using the in-memory ledger.
func SeedAccount(l Ledger, addr profile.PublicKey, data []byte) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.accounts[addr] = append([]byte(nil), data...)
	}
}

// SetUnavailable makes every in-memory query fail with ErrRPCUnavailable.
func SetUnavailable(l Ledger, down bool) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.unavailable = down
	}
}
