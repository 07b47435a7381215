package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "challenge:v1:"

type storedChallenge struct {
	Handle    string `json:"handle"`
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expires_at"`
}

// RedisRegistry shares challenges between service replicas. Expiry is
// enforced by key TTLs, and DEL's reply count decides which concurrent
// consumer wins.
type RedisRegistry struct {
	opts  options
	cache *redis.Client
}

var _ Registry = (*RedisRegistry)(nil)

// NewRedisRegistry builds a registry backed by cache.
func NewRedisRegistry(cache *redis.Client, opts ...Option) *RedisRegistry {
	return &RedisRegistry{opts: buildOptions(opts), cache: cache}
}

func (r *RedisRegistry) Issue(ctx context.Context, handle string) (Challenge, error) {
	for attempt := 0; attempt < maxNonceAttempts; attempt++ {
		nonce, err := newNonce(r.opts.entropy)
		if err != nil {
			return Challenge{}, err
		}
		ch := Challenge{
			Nonce:     nonce,
			Handle:    handle,
			Message:   Message(handle, nonce),
			ExpiresAt: r.opts.now().Add(r.opts.ttl),
		}
		payload, err := json.Marshal(storedChallenge{Handle: ch.Handle, Message: ch.Message, ExpiresAt: ch.ExpiresAt.UnixNano()})
		if err != nil {
			return Challenge{}, fmt.Errorf("encode challenge: %w", err)
		}
		created, err := r.cache.SetNX(ctx, keyPrefix+nonce, payload, r.opts.ttl).Result()
		if err != nil {
			return Challenge{}, fmt.Errorf("store challenge: %w", err)
		}
		if created {
			return ch, nil
		}
	}
	return Challenge{}, errNonceCollision
}

func (r *RedisRegistry) Peek(ctx context.Context, nonce string) (Challenge, bool, error) {
	raw, err := r.cache.Get(ctx, keyPrefix+nonce).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, false, nil
	}
	if err != nil {
		return Challenge{}, false, fmt.Errorf("load challenge: %w", err)
	}

	var stored storedChallenge
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Challenge{}, false, fmt.Errorf("decode challenge: %w", err)
	}
	ch := Challenge{
		Nonce:     nonce,
		Handle:    stored.Handle,
		Message:   stored.Message,
		ExpiresAt: time.Unix(0, stored.ExpiresAt),
	}
	if ch.Expired(r.opts.now()) {
		// The key TTL is authoritative but clocks drift; never hand out a stale challenge.
		if err := r.cache.Del(ctx, keyPrefix+nonce).Err(); err != nil {
			r.opts.logger.WarnContext(ctx, "remove stale challenge", slog.String("nonce", nonce), slog.Any("error", err))
		}
		return Challenge{}, false, nil
	}
	return ch, true, nil
}

func (r *RedisRegistry) Consume(ctx context.Context, nonce string) (bool, error) {
	n, err := r.cache.Del(ctx, keyPrefix+nonce).Result()
	if err != nil {
		return false, fmt.Errorf("consume challenge: %w", err)
	}
	return n == 1, nil
}
