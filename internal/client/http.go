package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx answer from the inbox service.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

// Profile is a handle's public profile.
type Profile struct {
	Handle    string   `json:"handle"`
	Owner     string   `json:"owner"`
	EncPK     string   `json:"enc_pk"`
	Allowlist []string `json:"allowlist"`
	PDA       string   `json:"pda"`
}

// Challenge is an issued sign-in challenge.
type Challenge struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expires_at"`
}

// Message is an inbox entry as served.
type Message struct {
	ID         int64   `json:"id"`
	Handle     string  `json:"handle"`
	Ciphertext string  `json:"ciphertext"`
	Nonce      string  `json:"nonce"`
	EPK        string  `json:"epk"`
	Nickname   *string `json:"nickname"`
	CreatedAt  string  `json:"created_at"`
}

// Sealed returns the box parameters of m.
func (m Message) Sealed() Sealed {
	return Sealed{Ciphertext: m.Ciphertext, Nonce: m.Nonce, EPK: m.EPK}
}

// HTTPClient talks to the inbox API rooted at Base, e.g. http://127.0.0.1:8080/api/v1.
type HTTPClient struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client using http.DefaultClient.
func NewHTTP(base string) *HTTPClient {
	return &HTTPClient{Base: strings.TrimRight(base, "/"), HTTP: http.DefaultClient}
}

// Profile looks a handle up.
func (c *HTTPClient) Profile(ctx context.Context, handle string) (Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(handle), nil, &out)
	return out, err
}

// ProfilesByOwner lists the profiles owned by a base-58 public key.
func (c *HTTPClient) ProfilesByOwner(ctx context.Context, owner string) ([]Profile, error) {
	var out struct {
		Profiles []Profile `json:"profiles"`
	}
	err := c.do(ctx, http.MethodGet, "/profiles/owner/"+url.PathEscape(owner), nil, &out)
	return out.Profiles, err
}

// PostMessage submits a sealed message for handle.
func (c *HTTPClient) PostMessage(ctx context.Context, handle string, s Sealed, nickname string) error {
	body := map[string]string{
		"handle":     handle,
		"ciphertext": s.Ciphertext,
		"nonce":      s.Nonce,
		"epk":        s.EPK,
	}
	if nickname != "" {
		body["nickname"] = nickname
	}
	return c.do(ctx, http.MethodPost, "/message", body, nil)
}

// Challenge requests a challenge for handle.
func (c *HTTPClient) Challenge(ctx context.Context, handle string) (Challenge, error) {
	var out Challenge
	err := c.do(ctx, http.MethodGet, "/challenge?handle="+url.QueryEscape(handle), nil, &out)
	return out, err
}

// Inbox requests a challenge, signs it with id and fetches the messages.
func (c *HTTPClient) Inbox(ctx context.Context, handle string, id *Identity) ([]Message, error) {
	ch, err := c.Challenge(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("challenge: %w", err)
	}
	req := map[string]string{
		"handle":    handle,
		"pubkey":    id.PublicKey(),
		"signature": id.Sign(ch.Message),
		"nonce":     ch.Nonce,
	}
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodPost, "/inbox", req, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Detail string `json:"detail"`
	}
	detail := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
		detail = body.Detail
	}
	if detail == "" {
		detail = resp.Status
	}
	return &APIError{Status: resp.StatusCode, Detail: detail}
}
