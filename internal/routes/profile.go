package routes

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/blueshift/inbox/internal/ledger"
	"github.com/blueshift/inbox/internal/profile"
)

type profileView struct {
	Handle    string   `json:"handle"`
	Owner     string   `json:"owner"`
	EncPK     string   `json:"enc_pk"`
	Allowlist []string `json:"allowlist,omitempty"`
	PDA       string   `json:"pda,omitempty"`
}

func newProfileView(rec profile.Record) profileView {
	return profileView{
		Handle: rec.Handle,
		Owner:  rec.Owner.String(),
		EncPK:  base64.StdEncoding.EncodeToString(rec.EncryptionKey[:]),
	}
}

// RegisterProfileRoutes exposes read-only profile lookups against the ledger.
// Undecodable accounts are reported as not found.
func RegisterProfileRoutes(r fiber.Router, led ledger.Ledger, logger *slog.Logger) {
	r.Get("/profile/:handle", func(c *fiber.Ctx) error {
		handle, err := url.PathUnescape(c.Params("handle"))
		if err != nil || !profile.ValidHandle(handle) {
			return fiber.NewError(http.StatusUnprocessableEntity, fmt.Sprintf("handle must be 1-%d bytes", profile.MaxHandleLen))
		}
		rec, ok, err := led.FetchByIdentity(c.UserContext(), handle)
		switch {
		case errors.Is(err, ledger.ErrRPCUnavailable):
			logger.WarnContext(c.UserContext(), "profile lookup failed", slog.String("handle", handle), slog.Any("error", err))
			return fiber.NewError(http.StatusBadGateway, "ledger unavailable")
		case errors.Is(err, profile.ErrMalformedAccount):
			logger.InfoContext(c.UserContext(), "undecodable profile account", slog.String("handle", handle), slog.Any("error", err))
			return fiber.NewError(http.StatusNotFound, "profile not found")
		case err != nil:
			return fiber.NewError(http.StatusInternalServerError, "internal error")
		case !ok:
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}

		view := newProfileView(rec)
		view.Allowlist = make([]string, 0, len(rec.Allowlist))
		for _, k := range rec.Allowlist {
			view.Allowlist = append(view.Allowlist, k.String())
		}
		return c.Status(http.StatusOK).JSON(view)
	})

	r.Get("/profiles/owner/:pubkey", func(c *fiber.Ctx) error {
		owner, err := profile.ParsePublicKey(c.Params("pubkey"))
		if err != nil {
			return fiber.NewError(http.StatusUnprocessableEntity, "invalid public key")
		}
		accounts, err := led.FetchByOwner(c.UserContext(), owner)
		if err != nil {
			logger.WarnContext(c.UserContext(), "owner lookup failed", slog.String("owner", owner.String()), slog.Any("error", err))
			if errors.Is(err, ledger.ErrRPCUnavailable) {
				return fiber.NewError(http.StatusBadGateway, "ledger unavailable")
			}
			return fiber.NewError(http.StatusInternalServerError, "internal error")
		}

		out := make([]profileView, 0, len(accounts))
		for _, acc := range accounts {
			view := newProfileView(acc.Profile)
			view.PDA = acc.Address.String()
			out = append(out, view)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"profiles": out})
	})
}
