package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blueshift/inbox/internal/logging"
	"github.com/blueshift/inbox/internal/profile"
)

// DefaultTimeout bounds every call to the ledger node.
const DefaultTimeout = 10 * time.Second

// RPCClient queries a ledger node over JSON-RPC. It never retries.
type RPCClient struct {
	url       string
	programID profile.PublicKey
	timeout   time.Duration
	http      *http.Client
	decode    func([]byte) (profile.Record, error)
	logger    *slog.Logger
}

// Option customises an RPCClient.
type Option func(*RPCClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *RPCClient) { c.http = hc }
}

// WithStrictDiscriminator makes the client reject accounts whose
// discriminator is not the profile type tag.
func WithStrictDiscriminator(strict bool) Option {
	return func(c *RPCClient) {
		if strict {
			c.decode = profile.DecodeStrict
		} else {
			c.decode = profile.Decode
		}
	}
}

// WithLogger sets the logger used for skipped accounts.
func WithLogger(logger *slog.Logger) Option {
	return func(c *RPCClient) { c.logger = logger }
}

// NewRPCClient builds a client for the node at url. A zero timeout means DefaultTimeout.
func NewRPCClient(url string, programID profile.PublicKey, timeout time.Duration, opts ...Option) *RPCClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &RPCClient{
		url:       url,
		programID: programID,
		timeout:   timeout,
		http:      &http.Client{Timeout: timeout},
		decode:    profile.Decode,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type accountData struct {
	Data []string `json:"data"`
}

type accountInfoResult struct {
	Value *accountData `json:"value"`
}

type programAccount struct {
	Pubkey  string      `json:"pubkey"`
	Account accountData `json:"account"`
}

type memcmpFilter struct {
	Memcmp struct {
		Offset int    `json:"offset"`
		Bytes  string `json:"bytes"`
	} `json:"memcmp"`
}

// FetchByIdentity reads and decodes the profile account derived from handle.
func (c *RPCClient) FetchByIdentity(ctx context.Context, handle string) (profile.Record, bool, error) {
	addr, _, err := ProfileAddress(handle, c.programID)
	if err != nil {
		if errors.Is(err, ErrSeedTooLong) {
			// The program cannot create a profile for such a handle.
			return profile.Record{}, false, nil
		}
		return profile.Record{}, false, fmt.Errorf("derive profile address: %w", err)
	}

	var result accountInfoResult
	params := []any{addr.String(), map[string]string{"encoding": "base64"}}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return profile.Record{}, false, err
	}
	if result.Value == nil || len(result.Value.Data) == 0 || result.Value.Data[0] == "" {
		return profile.Record{}, false, nil
	}

	raw, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return profile.Record{}, false, fmt.Errorf("%w: account data: %v", profile.ErrMalformedAccount, err)
	}
	rec, err := c.decode(raw)
	if err != nil {
		return profile.Record{}, false, err
	}
	return rec, true, nil
}

// FetchByOwner lists the program's profile accounts owned by owner. The node
// applies the owner filter; accounts that fail to decode are skipped.
func (c *RPCClient) FetchByOwner(ctx context.Context, owner profile.PublicKey) ([]Account, error) {
	var filter memcmpFilter
	filter.Memcmp.Offset = OwnerOffset
	filter.Memcmp.Bytes = owner.String()

	params := []any{
		c.programID.String(),
		map[string]any{
			"encoding": "base64",
			"filters":  []memcmpFilter{filter},
		},
	}

	var result []programAccount
	if err := c.call(ctx, "getProgramAccounts", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(result))
	for _, item := range result {
		if len(item.Account.Data) == 0 || item.Account.Data[0] == "" {
			continue
		}
		addr, err := profile.ParsePublicKey(item.Pubkey)
		if err != nil {
			c.logger.Warn("skipping account with invalid address", slog.String("pubkey", item.Pubkey), slog.Any("error", err))
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(item.Account.Data[0])
		if err != nil {
			c.logger.Warn("skipping account with invalid data encoding", slog.String("pubkey", item.Pubkey), slog.Any("error", err))
			continue
		}
		rec, err := c.decode(raw)
		if err != nil {
			c.logger.Warn("skipping undecodable account", slog.String("pubkey", item.Pubkey), slog.Any("error", err))
			continue
		}
		accounts = append(accounts, Account{Address: addr, Profile: rec})
	}
	return accounts, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRPCUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRPCUnavailable, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is never surfaced.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s: status %d", ErrRPCUnavailable, method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrRPCUnavailable, method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: %s: rpc error %d", ErrRPCUnavailable, method, envelope.Error.Code)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("%w: %s: decode result: %v", ErrRPCUnavailable, method, err)
	}
	return nil
}
