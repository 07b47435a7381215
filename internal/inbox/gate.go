// Package inbox gates access to a handle's messages behind a signed,
// single-use challenge and the handle's on-ledger allowlist.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blueshift/inbox/internal/access"
	"github.com/blueshift/inbox/internal/challenge"
	"github.com/blueshift/inbox/internal/ledger"
	"github.com/blueshift/inbox/internal/logging"
	"github.com/blueshift/inbox/internal/message"
	"github.com/blueshift/inbox/internal/profile"
	"github.com/blueshift/inbox/internal/signature"
)

// MessageLister is the read side of the message store.
type MessageLister interface {
	ListByHandle(ctx context.Context, handle string) ([]message.Message, error)
}

// ProveRequest is a client's claim to a handle's inbox.
type ProveRequest struct {
	Handle    string
	PublicKey string
	Signature string
	Nonce     string
}

// Gate runs the prove-and-fetch flow. It is safe for concurrent use as long
// as its collaborators are.
type Gate struct {
	challenges challenge.Registry
	ledger     ledger.Ledger
	messages   MessageLister
	verify     func(publicKey, sig string, msg []byte) bool
	logger     *slog.Logger
}

// NewGate wires a gate from its collaborators.
func NewGate(challenges challenge.Registry, led ledger.Ledger, messages MessageLister, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gate{
		challenges: challenges,
		ledger:     led,
		messages:   messages,
		verify:     signature.Verify,
		logger:     logger,
	}
}

// Issue creates a fresh challenge for handle.
func (g *Gate) Issue(ctx context.Context, handle string) (challenge.Challenge, error) {
	ch, err := g.challenges.Issue(ctx, handle)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("issue challenge: %w", err)
	}
	return ch, nil
}

// ProveAndFetch checks, in order, that the nonce is live and bound to the
// handle, that the signature covers the challenge message, that the handle
// has a profile, and that the key may read it. Only when all of these hold
// is the nonce consumed and the inbox returned; any earlier failure leaves
// the challenge in place for a corrected retry.
func (g *Gate) ProveAndFetch(ctx context.Context, req ProveRequest) ([]message.Message, error) {
	ch, ok, err := g.challenges.Peek(ctx, req.Nonce)
	if err != nil {
		return nil, fmt.Errorf("peek challenge: %w", err)
	}
	if !ok || ch.Handle != req.Handle {
		return nil, g.deny(ctx, req, "challenge", ErrInvalidChallenge)
	}

	if !g.verify(req.PublicKey, req.Signature, []byte(ch.Message)) {
		return nil, g.deny(ctx, req, "signature", ErrSignatureFailed)
	}

	rec, found, err := g.ledger.FetchByIdentity(ctx, req.Handle)
	switch {
	case errors.Is(err, profile.ErrMalformedAccount):
		g.logger.WarnContext(ctx, "profile account failed to decode", slog.String("handle", req.Handle), slog.Any("error", err))
		return nil, ErrProfileNotFound
	case errors.Is(err, ledger.ErrRPCUnavailable):
		g.logger.WarnContext(ctx, "ledger unavailable", slog.String("handle", req.Handle), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	case err != nil:
		return nil, fmt.Errorf("resolve profile: %w", err)
	case !found:
		return nil, g.deny(ctx, req, "profile", ErrProfileNotFound)
	}

	if !access.IsAuthorized(rec, req.PublicKey) {
		return nil, g.deny(ctx, req, "authorization", ErrNotAuthorized)
	}

	removed, err := g.challenges.Consume(ctx, req.Nonce)
	if err != nil {
		return nil, fmt.Errorf("consume challenge: %w", err)
	}
	if !removed {
		// A concurrent request consumed it first, or it expired meanwhile.
		return nil, g.deny(ctx, req, "consume", ErrInvalidChallenge)
	}

	msgs, err := g.messages.ListByHandle(ctx, req.Handle)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	g.logger.InfoContext(ctx, "inbox opened",
		slog.String("handle", req.Handle),
		slog.String("pubkey", req.PublicKey),
		slog.Int("messages", len(msgs)),
	)
	return msgs, nil
}

func (g *Gate) deny(ctx context.Context, req ProveRequest, stage string, err error) error {
	g.logger.InfoContext(ctx, "inbox access denied",
		slog.String("handle", req.Handle),
		slog.String("stage", stage),
		slog.String("reason", err.Error()),
	)
	return err
}
