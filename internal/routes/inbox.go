package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/blueshift/inbox/internal/inbox"
	"github.com/blueshift/inbox/internal/message"
)

// RegisterInboxRoutes exposes challenge issuance and the authenticated inbox read.
func RegisterInboxRoutes(r fiber.Router, h *inbox.Handler, limiters ...fiber.Handler) {
	r.Get("/challenge", append(limiters, h.Challenge)...)
	r.Post("/inbox", h.Inbox)
}

// RegisterMessageRoutes exposes anonymous message submission.
func RegisterMessageRoutes(r fiber.Router, h *message.Handler, idempotency fiber.Handler) {
	r.Post("/message", idempotency, h.Post)
}
