package challenge

import (
	"context"
	"errors"
	"sync"
)

// maxNonceAttempts bounds regeneration on the astronomically unlikely event
// of a nonce collision.
const maxNonceAttempts = 3

var errNonceCollision = errors.New("could not generate a unique nonce")

// MemoryRegistry keeps challenges in process memory. One mutex guards the
// map; it is held only for map operations, never across I/O.
type MemoryRegistry struct {
	opts    options
	mu      sync.Mutex
	entries map[string]Challenge
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry builds an empty in-process registry.
func NewMemoryRegistry(opts ...Option) *MemoryRegistry {
	return &MemoryRegistry{opts: buildOptions(opts), entries: make(map[string]Challenge)}
}

func (r *MemoryRegistry) Issue(_ context.Context, handle string) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	for attempt := 0; attempt < maxNonceAttempts; attempt++ {
		nonce, err := newNonce(r.opts.entropy)
		if err != nil {
			return Challenge{}, err
		}
		if _, taken := r.entries[nonce]; taken {
			continue
		}
		ch := Challenge{
			Nonce:     nonce,
			Handle:    handle,
			Message:   Message(handle, nonce),
			ExpiresAt: r.opts.now().Add(r.opts.ttl),
		}
		r.entries[nonce] = ch
		return ch, nil
	}
	return Challenge{}, errNonceCollision
}

func (r *MemoryRegistry) Peek(_ context.Context, nonce string) (Challenge, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	ch, ok := r.entries[nonce]
	return ch, ok, nil
}

func (r *MemoryRegistry) Consume(_ context.Context, nonce string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	if _, ok := r.entries[nonce]; !ok {
		return false, nil
	}
	delete(r.entries, nonce)
	return true, nil
}

// Len returns the number of live challenges.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	return len(r.entries)
}

func (r *MemoryRegistry) sweepLocked() {
	now := r.opts.now()
	for nonce, ch := range r.entries {
		if ch.Expired(now) {
			delete(r.entries, nonce)
		}
	}
}
