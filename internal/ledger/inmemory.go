package ledger

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/blueshift/inbox/internal/profile"
)

type inMemoryLedger struct {
	mu          sync.RWMutex
	programID   profile.PublicKey
	accounts    map[profile.PublicKey][]byte
	unavailable bool
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit
// tests and local development. Accounts are stored as raw bytes and decoded
// on read, exactly as they would be when fetched from a node.
func NewInMemory(programID profile.PublicKey) Ledger {
	return &inMemoryLedger{
		programID: programID,
		accounts:  make(map[profile.PublicKey][]byte),
	}
}

func (l *inMemoryLedger) FetchByIdentity(_ context.Context, handle string) (profile.Record, bool, error) {
	addr, _, err := ProfileAddress(handle, l.programID)
	if err != nil {
		if errors.Is(err, ErrSeedTooLong) {
			return profile.Record{}, false, nil
		}
		return profile.Record{}, false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.unavailable {
		return profile.Record{}, false, ErrRPCUnavailable
	}
	data, ok := l.accounts[addr]
	if !ok {
		return profile.Record{}, false, nil
	}
	rec, err := profile.Decode(data)
	if err != nil {
		return profile.Record{}, false, err
	}
	return rec, true, nil
}

func (l *inMemoryLedger) FetchByOwner(_ context.Context, owner profile.PublicKey) ([]Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.unavailable {
		return nil, ErrRPCUnavailable
	}

	var out []Account
	for addr, data := range l.accounts {
		if len(data) < OwnerOffset+profile.PublicKeyLen || !bytes.Equal(data[OwnerOffset:OwnerOffset+profile.PublicKeyLen], owner[:]) {
			continue
		}
		rec, err := profile.Decode(data)
		if err != nil {
			continue
		}
		out = append(out, Account{Address: addr, Profile: rec})
	}
	return out, nil
}
