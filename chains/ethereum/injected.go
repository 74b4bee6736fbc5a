package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chinmay1088/vaultkit/chains"
)

var (
	_ chains.EthereumProvider = (*InjectedProvider)(nil)
	_ chains.Disconnector     = (*InjectedProvider)(nil)
)

// ErrNoAccounts is returned when a wallet exposes no accounts.
var ErrNoAccounts = errors.New("wallet exposes no accounts")

// InjectedProvider adapts an EIP-1193 style injected wallet to chains.EthereumProvider.
// Every operation is forwarded to the wallet as a JSON-RPC request.
type InjectedProvider struct {
	raw chains.InjectedEthereum
}

// NewInjectedProvider wraps raw. It performs no requests.
func NewInjectedProvider(raw chains.InjectedEthereum) *InjectedProvider {
	return &InjectedProvider{raw: raw}
}

// Wrap is the default EVM RPC adapter: it wraps raw without further checks.
func Wrap(_ context.Context, raw chains.InjectedEthereum) (chains.EthereumProvider, error) {
	if raw == nil {
		return nil, errors.New("nil injected provider")
	}

	return NewInjectedProvider(raw), nil
}

func (p *InjectedProvider) Type() chains.BlockchainType { return chains.Ethereum }

// Raw returns the wrapped injected wallet.
func (p *InjectedProvider) Raw() chains.InjectedEthereum { return p.raw }

// RequestAccounts asks the wallet for account access, prompting the user when needed.
func (p *InjectedProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return p.accounts(ctx, "eth_requestAccounts")
}

// Accounts returns the accounts already shared with the caller.
func (p *InjectedProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return p.accounts(ctx, "eth_accounts")
}

func (p *InjectedProvider) accounts(ctx context.Context, method string) ([]common.Address, error) {
	var accts []common.Address
	if err := p.call(ctx, &accts, method); err != nil {
		return nil, err
	}

	return accts, nil
}

// ChainID returns the chain the wallet is currently connected to.
func (p *InjectedProvider) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := p.call(ctx, &id, "eth_chainId"); err != nil {
		return nil, err
	}

	return id.ToInt(), nil
}

func (p *InjectedProvider) SignMessage(ctx context.Context, account common.Address, msg []byte) ([]byte, error) {
	var sig hexutil.Bytes
	if err := p.call(ctx, &sig, "personal_sign", hexutil.Encode(msg), account); err != nil {
		return nil, err
	}

	return sig, nil
}

// SignTransaction asks the wallet to sign tx on behalf of its default account.
func (p *InjectedProvider) SignTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	from, err := p.sender(ctx)
	if err != nil {
		return nil, err
	}

	var res json.RawMessage
	if err = p.call(ctx, &res, "eth_signTransaction", newTxArgs(from, tx)); err != nil {
		return nil, err
	}

	raw, err := decodeSignResult(res)
	if err != nil {
		return nil, err
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	return signed, nil
}

// SendTransaction broadcasts tx. Signed transactions are sent raw; unsigned ones are handed to
// the wallet, which signs and submits them.
func (p *InjectedProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	var hash common.Hash
	if isSigned(tx) {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to encode transaction: %w", err)
		}
		if err := p.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
			return common.Hash{}, err
		}

		return hash, nil
	}

	from, err := p.sender(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if err := p.call(ctx, &hash, "eth_sendTransaction", newTxArgs(from, tx)); err != nil {
		return common.Hash{}, err
	}

	return hash, nil
}

// Disconnect revokes the account permission previously granted to the caller.
func (p *InjectedProvider) Disconnect(ctx context.Context) error {
	_, err := p.raw.Request(ctx, "wallet_revokePermissions", map[string]any{"eth_accounts": struct{}{}})
	if err != nil {
		return fmt.Errorf("wallet_revokePermissions: %w", err)
	}

	return nil
}

func (p *InjectedProvider) sender(ctx context.Context) (common.Address, error) {
	accts, err := p.Accounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accts) == 0 {
		return common.Address{}, ErrNoAccounts
	}

	return accts[0], nil
}

func (p *InjectedProvider) call(ctx context.Context, result any, method string, params ...any) error {
	raw, err := p.raw.Request(ctx, method, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}

	return nil
}

// decodeSignResult accepts both the bare raw transaction and geth's {raw, tx} object.
func decodeSignResult(res json.RawMessage) (hexutil.Bytes, error) {
	var raw hexutil.Bytes
	if err := json.Unmarshal(res, &raw); err == nil {
		return raw, nil
	}

	var obj struct {
		Raw hexutil.Bytes `json:"raw"`
	}
	if err := json.Unmarshal(res, &obj); err != nil {
		return nil, fmt.Errorf("eth_signTransaction: unexpected result: %w", err)
	}
	if len(obj.Raw) == 0 {
		return nil, errors.New("eth_signTransaction: empty raw transaction")
	}

	return obj.Raw, nil
}

// txArgs is the transaction object accepted by eth_sendTransaction and eth_signTransaction.
type txArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value,omitempty"`
	Nonce                *hexutil.Uint64 `json:"nonce,omitempty"`
	Data                 hexutil.Bytes   `json:"data,omitempty"`
	ChainID              *hexutil.Big    `json:"chainId,omitempty"`
}

func newTxArgs(from common.Address, tx *types.Transaction) txArgs {
	args := txArgs{
		From:  from,
		To:    tx.To(),
		Value: (*hexutil.Big)(tx.Value()),
		Data:  tx.Data(),
	}
	if gas := tx.Gas(); gas > 0 {
		args.Gas = (*hexutil.Uint64)(&gas)
	}
	if nonce := tx.Nonce(); nonce > 0 {
		args.Nonce = (*hexutil.Uint64)(&nonce)
	}
	if tx.Type() == types.DynamicFeeTxType {
		args.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		args.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())
		args.ChainID = (*hexutil.Big)(tx.ChainId())
	} else if tx.GasPrice() != nil && tx.GasPrice().Sign() > 0 {
		args.GasPrice = (*hexutil.Big)(tx.GasPrice())
	}

	return args
}

func isSigned(tx *types.Transaction) bool {
	_, r, s := tx.RawSignatureValues()
	return r != nil && s != nil && (r.Sign() != 0 || s.Sign() != 0)
}
