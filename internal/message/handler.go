package message

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes message submission.
type Handler struct {
	service *Service
}

// NewHandler constructs a message HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type postRequest struct {
	Handle     string `json:"handle"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	EPK        string `json:"epk"`
	Nickname   string `json:"nickname"`
}

// Response is the wire form of a stored message.
type Response struct {
	ID         int64   `json:"id"`
	Handle     string  `json:"handle"`
	Ciphertext string  `json:"ciphertext"`
	Nonce      string  `json:"nonce"`
	EPK        string  `json:"epk"`
	Nickname   *string `json:"nickname"`
	CreatedAt  string  `json:"created_at"`
}

// ToResponse converts a stored message to its wire form.
func ToResponse(m Message) Response {
	return Response{
		ID:         m.ID,
		Handle:     m.Handle,
		Ciphertext: m.Ciphertext,
		Nonce:      m.Nonce,
		EPK:        m.EphemeralKey,
		Nickname:   m.Nickname,
		CreatedAt:  m.CreatedAt.UTC().Format(CreatedAtLayout),
	}
}

// Post stores an encrypted message for a handle.
func (h *Handler) Post(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	_, err := h.service.Post(c.UserContext(), PostInput{
		Handle:       req.Handle,
		Ciphertext:   req.Ciphertext,
		Nonce:        req.Nonce,
		EphemeralKey: req.EPK,
		Nickname:     req.Nickname,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not store message")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}
