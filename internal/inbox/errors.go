package inbox

import (
	"errors"
	"net/http"
)

// Every terminal failure of the prove-and-fetch flow maps to exactly one of
// these. Callers see only the sentinel text, never the underlying cause.
var (
	// ErrInvalidChallenge covers unknown, expired, already consumed and
	// handle-mismatched nonces alike.
	ErrInvalidChallenge = errors.New("invalid challenge")
	// ErrSignatureFailed means the signature did not prove possession of the claimed key.
	ErrSignatureFailed = errors.New("signature failed")
	// ErrNotAuthorized means the key is neither the owner nor on the allowlist.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrProfileNotFound means no decodable profile exists for the handle.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrLedgerUnavailable means the ledger node could not be queried.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)

// StatusFor maps a gate error to its HTTP status and public message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidChallenge):
		return http.StatusBadRequest, ErrInvalidChallenge.Error()
	case errors.Is(err, ErrSignatureFailed):
		return http.StatusUnauthorized, ErrSignatureFailed.Error()
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden, ErrNotAuthorized.Error()
	case errors.Is(err, ErrProfileNotFound):
		return http.StatusNotFound, ErrProfileNotFound.Error()
	case errors.Is(err, ErrLedgerUnavailable):
		return http.StatusBadGateway, ErrLedgerUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
