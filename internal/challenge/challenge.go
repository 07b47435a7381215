package challenge

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blueshift/inbox/internal/logging"
)

const (
	// DefaultTTL is how long an issued challenge stays valid.
	DefaultTTL = 300 * time.Second
	// nonceBytes of entropy are encoded into every nonce.
	nonceBytes = 16
	// messagePrefix namespaces signed messages so they cannot be replayed elsewhere.
	messagePrefix = "blueshift-inbox"
)

// Challenge is a single-use authentication artifact bound to a handle.
type Challenge struct {
	Nonce     string
	Handle    string
	Message   string
	ExpiresAt time.Time
}

// Expired reports whether the challenge is no longer valid at now.
func (c Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Registry issues and consumes challenges. Implementations must be safe for
// concurrent use and must never let two callers consume the same nonce.
type Registry interface {
	Issue(ctx context.Context, handle string) (Challenge, error)
	// Peek returns the live challenge for nonce without consuming it.
	Peek(ctx context.Context, nonce string) (Challenge, bool, error)
	// Consume removes nonce. It is idempotent; the boolean reports whether
	// this call was the one that removed a live challenge.
	Consume(ctx context.Context, nonce string) (bool, error)
}

// Message builds the exact text a client signs for (handle, nonce).
func Message(handle, nonce string) string {
	return fmt.Sprintf("%s:%s:%s", messagePrefix, handle, nonce)
}

// Option customises a registry.
type Option func(*options)

type options struct {
	ttl     time.Duration
	now     func() time.Time
	entropy io.Reader
	logger  *slog.Logger
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock injects the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithEntropy replaces crypto/rand as the nonce source.
func WithEntropy(r io.Reader) Option {
	return func(o *options) { o.entropy = r }
}

// WithLogger sets the logger for store housekeeping failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now, entropy: rand.Reader, logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newNonce(entropy io.Reader) (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
