package solana

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/vaultkit/chains"
)

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return key
}

func TestSOLToLamports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give    string
		want    uint64
		wantErr bool
	}{
		{give: "1", want: 1_000_000_000},
		{give: "0.000000001", want: 1},
		{give: "2.5", want: 2_500_000_000},
		{give: "0.0000000001", wantErr: true},
		{give: "0", wantErr: true},
		{give: "-3", wantErr: true},
		{give: "lots", wantErr: true},
		{give: "100000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			got, err := SOLToLamports(tt.give)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "1.5 SOL", FormatBalance(1_500_000_000))
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	pub := newKey(t).PublicKey()
	got, err := ParseAddress(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	_, err = ParseAddress("0abc")
	require.ErrorIs(t, err, ErrInvalidAddress)
	require.ErrorContains(t, err, "position 0")

	require.ErrorIs(t, ValidateAddress("abc"), ErrInvalidAddress)
}

func TestParseBlockhash(t *testing.T) {
	t.Parallel()

	want := solana.Hash{1, 2, 3}
	got, err := ParseBlockhash(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseBlockhash("abc")
	require.Error(t, err)
}

func TestNewTransferTx(t *testing.T) {
	t.Parallel()

	from, to := newKey(t).PublicKey(), newKey(t).PublicKey()

	_, err := NewTransferTx(from, to, 0, solana.Hash{1})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewTransferTx(from, to, 1, solana.Hash{})
	require.Error(t, err)

	tx, err := NewTransferTx(from, to, 42, solana.Hash{1})
	require.NoError(t, err)
	assert.Equal(t, from, tx.Message.AccountKeys[0])
	assert.Equal(t, solana.Hash{1}, tx.Message.RecentBlockhash)

	encoded, err := EncodeTransaction(tx)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}

func TestKeypairProvider_Sign(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	p := NewKeypairProvider(key, nil)
	assert.Equal(t, chains.Solana, p.Type())

	sig, err := p.SignMessage(t.Context(), []byte("hello"))
	require.NoError(t, err)
	assert.True(t, sig.Verify(key.PublicKey(), []byte("hello")))

	tx, err := NewTransferTx(key.PublicKey(), newKey(t).PublicKey(), 10, solana.Hash{9})
	require.NoError(t, err)
	signed, err := p.SignTransaction(t.Context(), tx)
	require.NoError(t, err)
	require.Len(t, signed.Signatures, 1)

	msg, err := signed.Message.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, signed.Signatures[0].Verify(key.PublicKey(), msg))
}

func TestKeypairProvider_SignTransaction_WrongPayer(t *testing.T) {
	t.Parallel()

	tx, err := NewTransferTx(newKey(t).PublicKey(), newKey(t).PublicKey(), 10, solana.Hash{9})
	require.NoError(t, err)

	_, err = NewKeypairProvider(newKey(t), nil).SignTransaction(t.Context(), tx)
	require.ErrorIs(t, err, ErrMissingSigner)
}

func TestKeypairProvider_SendTransaction_NoClient(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	tx, err := NewTransferTx(key.PublicKey(), newKey(t).PublicKey(), 10, solana.Hash{9})
	require.NoError(t, err)

	_, err = NewKeypairProvider(key, nil).SendTransaction(t.Context(), tx)
	require.ErrorIs(t, err, ErrNoClient)
}

func TestKeypairWallet_Lifecycle(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	w := NewKeypairWallet(key, nil, chains.WalletFlags{IsPhantom: true})
	assert.True(t, w.Flags().IsPhantom)
	assert.True(t, w.PublicKey().IsZero(), "key is hidden until connected")

	_, err := w.SignMessage(t.Context(), []byte("x"))
	require.ErrorIs(t, err, ErrNotConnected)

	require.ErrorIs(t, w.Connect(t.Context(), chains.ConnectOptions{OnlyIfTrusted: true}), ErrNotTrusted)
	require.NoError(t, w.Connect(t.Context(), chains.ConnectOptions{}))
	assert.Equal(t, key.PublicKey(), w.PublicKey())

	p := NewInjectedProvider(w)
	assert.Equal(t, key.PublicKey(), p.PublicKey())
	sig, err := p.SignMessage(t.Context(), []byte("x"))
	require.NoError(t, err)
	assert.True(t, sig.Verify(key.PublicKey(), []byte("x")))

	require.NoError(t, p.Disconnect(t.Context()))
	assert.False(t, w.Connected())

	require.NoError(t, w.Connect(t.Context(), chains.ConnectOptions{OnlyIfTrusted: true}), "trusted after first approval")
}

func TestLoadKeypairWallet(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	path := filepath.Join(t.TempDir(), "id.json")
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	w, err := LoadKeypairWallet(path, nil, chains.WalletFlags{IsSolflare: true})
	require.NoError(t, err)
	require.NoError(t, w.Connect(t.Context(), chains.ConnectOptions{}))
	assert.Equal(t, key.PublicKey(), w.PublicKey())

	_, err = LoadKeypairWallet(filepath.Join(t.TempDir(), "missing.json"), nil, chains.WalletFlags{})
	require.Error(t, err)
}

// rpcStub answers Solana JSON-RPC calls from a method table.
func rpcStub(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if res, ok := results[req.Method]; ok {
			resp["result"] = res
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	blockhash := solana.Hash{7}
	srv := rpcStub(t, map[string]any{
		"getLatestBlockhash": map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   map[string]any{"blockhash": blockhash.String(), "lastValidBlockHeight": 100},
		},
		"getBalance": map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   1_500_000_000,
		},
	})
	c := NewClient(srv.URL)
	c.Attempts = 1

	got, err := c.LatestBlockhash(t.Context())
	require.NoError(t, err)
	assert.Equal(t, blockhash, got)

	lamports, err := c.Balance(t.Context(), key.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)
}

func TestKeypairProvider_SendTransaction(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	tx, err := NewTransferTx(key.PublicKey(), newKey(t).PublicKey(), 10, solana.Hash{9})
	require.NoError(t, err)
	want, err := key.Sign([]byte("stand-in signature"))
	require.NoError(t, err)

	srv := rpcStub(t, map[string]any{"sendTransaction": want.String()})
	c := NewClient(srv.URL)
	c.Attempts = 1

	got, err := NewKeypairProvider(key, c).SendTransaction(t.Context(), tx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, tx.Signatures, 1, "unsigned transactions are signed before sending")
}

func TestClient_SendRejected(t *testing.T) {
	t.Parallel()

	key := newKey(t)
	tx, err := NewTransferTx(key.PublicKey(), newKey(t).PublicKey(), 10, solana.Hash{9})
	require.NoError(t, err)
	_, err = NewKeypairProvider(key, nil).SignTransaction(t.Context(), tx)
	require.NoError(t, err)

	c := NewClient(rpcStub(t, nil).URL)
	c.Attempts = 3

	_, err = c.Send(t.Context(), tx)
	require.ErrorContains(t, err, "Method not found")
}
