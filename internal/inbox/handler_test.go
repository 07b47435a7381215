package inbox

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/blueshift/inbox/internal/challenge"
)

func newTestApp(f *fixture) *fiber.App {
	app := fiber.New()
	h := NewHandler(f.gate)
	app.Get("/challenge", h.Challenge)
	app.Post("/inbox", h.Inbox)
	return app
}

func issueOverHTTP(t *testing.T, app *fiber.App, handle string) challengeResponse {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/challenge?handle="+handle, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var out challengeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postInbox(t *testing.T, app *fiber.App, body inboxRequest) (*http.Response, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/inbox", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestHandlerChallengeValidatesHandle(t *testing.T) {
	app := newTestApp(newFixture(t))

	for _, target := range []string{"/challenge", "/challenge?handle=abcdefghijklmnopqrstuvwxyz0123456"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, target)
	}
}

func TestHandlerChallengeAndInbox(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	ch := issueOverHTTP(t, app, "alice")
	require.Equal(t, "blueshift-inbox:alice:"+ch.Nonce, ch.Message)
	require.Equal(t, f.clock.Now().Add(challenge.DefaultTTL).Unix(), ch.ExpiresAt)

	resp, raw := postInbox(t, app, inboxRequest{
		Handle:    "alice",
		PubKey:    f.owner.text(),
		Signature: f.owner.sign(ch.Message),
		Nonce:     ch.Nonce,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out struct {
		Messages []map[string]any `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Messages, 2)
	require.Equal(t, "second", out.Messages[0]["ciphertext"])
	require.Contains(t, out.Messages[0], "created_at")
	require.Contains(t, out.Messages[0], "epk")

	resp, raw = postInbox(t, app, inboxRequest{
		Handle:    "alice",
		PubKey:    f.owner.text(),
		Signature: f.owner.sign(ch.Message),
		Nonce:     ch.Nonce,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid challenge", string(raw))
}

func TestHandlerInboxStatuses(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)
	stranger := newKeypair(t)

	ch := issueOverHTTP(t, app, "alice")

	resp, _ := postInbox(t, app, inboxRequest{Handle: "alice", PubKey: f.owner.text(), Signature: "bad", Nonce: ch.Nonce})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postInbox(t, app, inboxRequest{Handle: "alice", PubKey: stranger.text(), Signature: stranger.sign(ch.Message), Nonce: ch.Nonce})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	missing := issueOverHTTP(t, app, "nobody")
	resp, _ = postInbox(t, app, inboxRequest{Handle: "nobody", PubKey: f.owner.text(), Signature: f.owner.sign(missing.Message), Nonce: missing.Nonce})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerChallengeKeepsHandleAcrossRequests(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	ch := issueOverHTTP(t, app, "alice")
	for i := 0; i < 20; i++ {
		issueOverHTTP(t, app, "zzzzz")
	}

	resp, _ := postInbox(t, app, inboxRequest{
		Handle:    "zzzzz",
		PubKey:    f.owner.text(),
		Signature: f.owner.sign(ch.Message),
		Nonce:     ch.Nonce,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "nonce must stay bound to alice")

	resp, raw := postInbox(t, app, inboxRequest{
		Handle:    "alice",
		PubKey:    f.owner.text(),
		Signature: f.owner.sign(ch.Message),
		Nonce:     ch.Nonce,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
}
