package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blueshift/inbox/internal/notification"
	"github.com/blueshift/inbox/internal/profile"
)

// ErrInvalidMessage is returned when a submission is missing required fields.
var ErrInvalidMessage = errors.New("invalid message")

// Service accepts and lists messages.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	now      func() time.Time
}

// NewService creates a message service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

// Post validates and stores a message, stamping its creation time in UTC.
func (s *Service) Post(ctx context.Context, in PostInput) (Message, error) {
	if !profile.ValidHandle(in.Handle) {
		return Message{}, fmt.Errorf("%w: handle must be 1-%d bytes", ErrInvalidMessage, profile.MaxHandleLen)
	}
	if in.Ciphertext == "" || in.Nonce == "" || in.EphemeralKey == "" {
		return Message{}, fmt.Errorf("%w: ciphertext, nonce and epk are required", ErrInvalidMessage)
	}

	msg := Message{
		Handle:       in.Handle,
		Ciphertext:   in.Ciphertext,
		Nonce:        in.Nonce,
		EphemeralKey: in.EphemeralKey,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if in.Nickname != "" {
		nick := in.Nickname
		msg.Nickname = &nick
	}

	stored, err := s.repo.Insert(ctx, msg)
	if err != nil {
		return Message{}, fmt.Errorf("store message: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindMessageReceived,
			Destination: stored.Handle,
			Body:        fmt.Sprintf("message %d", stored.ID),
		})
	}
	return stored, nil
}

// ListByHandle returns the handle's messages, most recent first.
func (s *Service) ListByHandle(ctx context.Context, handle string) ([]Message, error) {
	return s.repo.ListByHandle(ctx, handle)
}
