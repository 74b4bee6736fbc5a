package ethereum

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/chinmay1088/vaultkit/chains"
)

var _ chains.InjectedEthereum = (*RPCWallet)(nil)

// RPCWallet exposes a JSON-RPC node with unlocked accounts (a dev node, a signer daemon) as an
// injected Ethereum wallet, so hosts without a browser extension can still offer one.
type RPCWallet struct {
	client *rpc.Client
	flags  chains.WalletFlags
}

// NewRPCWallet wraps an existing RPC client.
func NewRPCWallet(client *rpc.Client, flags chains.WalletFlags) *RPCWallet {
	return &RPCWallet{client: client, flags: flags}
}

// DialRPCWallet connects to the node at url.
func DialRPCWallet(ctx context.Context, url string, flags chains.WalletFlags) (*RPCWallet, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	return NewRPCWallet(client, flags), nil
}

func (w *RPCWallet) Flags() chains.WalletFlags { return w.flags }

// Request forwards method to the node. Nodes have no permission model, so account requests are
// served from eth_accounts and permission revocation always succeeds.
func (w *RPCWallet) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	switch method {
	case "eth_requestAccounts":
		method = "eth_accounts"
	case "wallet_revokePermissions":
		return json.RawMessage("null"), nil
	}

	var result json.RawMessage
	if err := w.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, err
	}

	return result, nil
}

// Close releases the underlying connection.
func (w *RPCWallet) Close() {
	w.client.Close()
}
