package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueshift/inbox/internal/profile"
)

// fakeNode answers the two JSON-RPC methods the client uses.
type fakeNode struct {
	mu       sync.Mutex
	accounts map[string][]byte
	status   int
	rpcError bool
	delay    time.Duration
	lastReq  map[string]any
}

func newFakeNode() *fakeNode {
	return &fakeNode{accounts: make(map[string][]byte), status: http.StatusOK}
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	if n.status != http.StatusOK {
		w.WriteHeader(n.status)
		_, _ = w.Write([]byte(`{"secret":"internal node detail"}`))
		return
	}

	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	n.lastReq = map[string]any{"method": req.Method}

	w.Header().Set("Content-Type", "application/json")
	if n.rpcError {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32005,"message":"node is behind"}}`))
		return
	}

	switch req.Method {
	case "getAccountInfo":
		var addr string
		_ = json.Unmarshal(req.Params[0], &addr)
		data, ok := n.accounts[addr]
		if !ok {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":{"context":{"slot":1},"value":null}}`))
			return
		}
		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      "1",
			"result": map[string]any{
				"context": map[string]any{"slot": 1},
				"value":   map[string]any{"data": []string{base64.StdEncoding.EncodeToString(data), "base64"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	case "getProgramAccounts":
		var cfg struct {
			Filters []memcmpFilter `json:"filters"`
		}
		_ = json.Unmarshal(req.Params[1], &cfg)
		n.lastReq["filters"] = cfg.Filters

		var result []map[string]any
		for addr, data := range n.accounts {
			match := true
			for _, f := range cfg.Filters {
				owner, err := profile.ParsePublicKey(f.Memcmp.Bytes)
				end := f.Memcmp.Offset + profile.PublicKeyLen
				if err != nil || len(data) < end || string(data[f.Memcmp.Offset:end]) != string(owner[:]) {
					match = false
				}
			}
			if match {
				result = append(result, map[string]any{
					"pubkey":  addr,
					"account": map[string]any{"data": []string{base64.StdEncoding.EncodeToString(data), "base64"}},
				})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": "1", "result": result})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (n *fakeNode) seed(t *testing.T, rec profile.Record) profile.PublicKey {
	t.Helper()
	addr, _, err := ProfileAddress(rec.Handle, testProgramID)
	require.NoError(t, err)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts[addr.String()] = profile.Encode(rec)
	return addr
}

func setupNode(t *testing.T, opts ...Option) (*fakeNode, *RPCClient) {
	t.Helper()
	node := newFakeNode()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	return node, NewRPCClient(srv.URL, testProgramID, time.Second, opts...)
}

func TestRPCClientFetchByIdentity(t *testing.T) {
	node, client := setupNode(t)
	want := profile.Record{Owner: pk(1), Handle: "alice", Allowlist: []profile.PublicKey{pk(2)}, Bump: 253}
	node.seed(t, want)

	got, ok, err := client.FetchByIdentity(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
	require.Equal(t, "getAccountInfo", node.lastReq["method"])
}

func TestRPCClientFetchByIdentityAbsent(t *testing.T) {
	_, client := setupNode(t)

	_, ok, err := client.FetchByIdentity(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRPCClientFetchByIdentityOverlongHandleIsAbsent(t *testing.T) {
	_, client := setupNode(t)

	_, ok, err := client.FetchByIdentity(context.Background(), "this-handle-is-way-too-long-for-a-seed")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRPCClientMalformedAccount(t *testing.T) {
	node, client := setupNode(t)
	addr, _, err := ProfileAddress("alice", testProgramID)
	require.NoError(t, err)
	node.accounts[addr.String()] = []byte{1, 2, 3}

	_, _, err = client.FetchByIdentity(context.Background(), "alice")
	require.ErrorIs(t, err, profile.ErrMalformedAccount)
}

func TestRPCClientStrictDiscriminator(t *testing.T) {
	node, client := setupNode(t, WithStrictDiscriminator(true))
	addr := node.seed(t, profile.Record{Owner: pk(1), Handle: "alice"})

	_, ok, err := client.FetchByIdentity(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)

	node.accounts[addr.String()][0] ^= 0xFF
	_, _, err = client.FetchByIdentity(context.Background(), "alice")
	require.ErrorIs(t, err, profile.ErrMalformedAccount)
}

func TestRPCClientUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(n *fakeNode)
	}{
		{name: "server error", setup: func(n *fakeNode) { n.status = http.StatusInternalServerError }},
		{name: "rate limited", setup: func(n *fakeNode) { n.status = http.StatusTooManyRequests }},
		{name: "rpc error object", setup: func(n *fakeNode) { n.rpcError = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, client := setupNode(t)
			tt.setup(node)

			_, _, err := client.FetchByIdentity(context.Background(), "alice")
			require.ErrorIs(t, err, ErrRPCUnavailable)
			require.NotContains(t, err.Error(), "internal node detail")

			_, err = client.FetchByOwner(context.Background(), pk(1))
			require.ErrorIs(t, err, ErrRPCUnavailable)
		})
	}
}

func TestRPCClientTimeout(t *testing.T) {
	node := newFakeNode()
	node.delay = 200 * time.Millisecond
	srv := httptest.NewServer(node)
	defer srv.Close()
	client := NewRPCClient(srv.URL, testProgramID, 20*time.Millisecond)

	_, _, err := client.FetchByIdentity(context.Background(), "alice")
	require.ErrorIs(t, err, ErrRPCUnavailable)
}

func TestRPCClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewRPCClient(url, testProgramID, time.Second)

	_, _, err := client.FetchByIdentity(context.Background(), "alice")
	require.ErrorIs(t, err, ErrRPCUnavailable)
}

func TestRPCClientFetchByOwner(t *testing.T) {
	node, client := setupNode(t)
	aliceAddr := node.seed(t, profile.Record{Owner: pk(1), Handle: "alice"})
	node.seed(t, profile.Record{Owner: pk(5), Handle: "bob"})

	var bad profile.PublicKey
	bad[0] = 42
	broken := append(make([]byte, OwnerOffset), pk(1).Bytes()...)
	node.accounts[bad.String()] = broken

	accounts, err := client.FetchByOwner(context.Background(), pk(1))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, aliceAddr, accounts[0].Address)
	require.Equal(t, "alice", accounts[0].Profile.Handle)

	filters, ok := node.lastReq["filters"].([]memcmpFilter)
	require.True(t, ok)
	require.Len(t, filters, 1)
	require.Equal(t, OwnerOffset, filters[0].Memcmp.Offset)
	require.Equal(t, pk(1).String(), filters[0].Memcmp.Bytes)
}
