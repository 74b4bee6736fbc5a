// Package chains defines the blockchain families vaultkit resolves providers for, the provider
// capability contracts per family, and the shapes of wallets injected by a host environment.
//
// Concrete providers live in the ethereum, solana and bitcoin subpackages.
package chains

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gagliardetto/solana-go"
)

// BlockchainType identifies which provider family a request targets.
type BlockchainType string

const (
	Ethereum BlockchainType = "ethereum"
	Solana   BlockchainType = "solana"
	Bitcoin  BlockchainType = "bitcoin"
)

// ErrUnknownBlockchain is returned when a blockchain name is not recognized.
var ErrUnknownBlockchain = errors.New("unknown blockchain type")

var aliases = map[string]BlockchainType{
	"ethereum": Ethereum,
	"eth":      Ethereum,
	"solana":   Solana,
	"sol":      Solana,
	"bitcoin":  Bitcoin,
	"btc":      Bitcoin,
}

// ParseBlockchainType parses a canonical name or short alias (eth, sol, btc), case-insensitively.
func ParseBlockchainType(s string) (BlockchainType, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBlockchain, s)
	}

	return t, nil
}

// Supported returns the known blockchain types in display order.
func Supported() []BlockchainType {
	return []BlockchainType{Ethereum, Solana, Bitcoin}
}

// Valid reports whether t is one of the known blockchain types.
func (t BlockchainType) Valid() bool {
	switch t {
	case Ethereum, Solana, Bitcoin:
		return true
	default:
		return false
	}
}

func (t BlockchainType) String() string { return string(t) }

// BlockchainProvider is the minimal capability every provider exposes: its family tag.
type BlockchainProvider interface {
	Type() BlockchainType
}

// Disconnector is implemented by providers that hold a connection which can be released.
type Disconnector interface {
	Disconnect(ctx context.Context) error
}

// EthereumProvider signs and submits transactions for EVM chains.
type EthereumProvider interface {
	BlockchainProvider
	// Accounts returns the accounts the provider currently exposes; the first is the default sender.
	Accounts(ctx context.Context) ([]common.Address, error)
	// SignMessage produces an EIP-191 personal signature over msg for account.
	SignMessage(ctx context.Context, account common.Address, msg []byte) ([]byte, error)
	SignTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error)
}

// SolanaProvider signs and submits Solana transactions.
type SolanaProvider interface {
	BlockchainProvider
	PublicKey() solana.PublicKey
	SignMessage(ctx context.Context, msg []byte) (solana.Signature, error)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// BitcoinProvider signs and submits Bitcoin transactions.
type BitcoinProvider interface {
	BlockchainProvider
	Address() btcutil.Address
	// SignMessage returns a compact recoverable signature over the Bitcoin signed-message digest.
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
	// SignTransaction signs every input of tx; prevOuts holds the spent output for each input, in order.
	SignTransaction(ctx context.Context, tx *wire.MsgTx, prevOuts []*wire.TxOut) (*wire.MsgTx, error)
	SendTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error)
}
