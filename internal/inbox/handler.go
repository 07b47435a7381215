package inbox

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/blueshift/inbox/internal/message"
	"github.com/blueshift/inbox/internal/profile"
)

// Handler exposes the challenge and inbox endpoints.
type Handler struct {
	gate *Gate
}

// NewHandler constructs an inbox HTTP handler.
func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

type challengeResponse struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expires_at"`
}

type inboxRequest struct {
	Handle    string `json:"handle"`
	PubKey    string `json:"pubkey"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

type inboxResponse struct {
	Messages []message.Response `json:"messages"`
}

// Challenge issues a challenge for the handle query parameter.
func (h *Handler) Challenge(c *fiber.Ctx) error {
	// The registry keeps the handle, so it must not alias the request buffer.
	handle := utils.CopyString(c.Query("handle"))
	if !profile.ValidHandle(handle) {
		return fiber.NewError(http.StatusUnprocessableEntity, fmt.Sprintf("handle must be 1-%d bytes", profile.MaxHandleLen))
	}
	ch, err := h.gate.Issue(c.UserContext(), handle)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not issue challenge")
	}
	return c.Status(http.StatusOK).JSON(challengeResponse{
		Nonce:     ch.Nonce,
		Message:   ch.Message,
		ExpiresAt: ch.ExpiresAt.Unix(),
	})
}

// Inbox proves key possession against a challenge and returns the messages.
func (h *Handler) Inbox(c *fiber.Ctx) error {
	var req inboxRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, "invalid request body")
	}
	msgs, err := h.gate.ProveAndFetch(c.UserContext(), ProveRequest{
		Handle:    req.Handle,
		PublicKey: req.PubKey,
		Signature: req.Signature,
		Nonce:     req.Nonce,
	})
	if err != nil {
		status, msg := StatusFor(err)
		return fiber.NewError(status, msg)
	}

	out := inboxResponse{Messages: make([]message.Response, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, message.ToResponse(m))
	}
	return c.Status(http.StatusOK).JSON(out)
}
