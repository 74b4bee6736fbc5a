package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chinmay1088/vaultkit/chains"
)

var _ chains.EthereumProvider = (*KeyedProvider)(nil)

var (
	// ErrUnknownAccount is returned when asked to sign for an account the provider does not hold.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrNoBackend is returned when a provider needs a node but was built without one.
	ErrNoBackend = errors.New("no backend configured")
)

// Backend is the subset of node access a KeyedProvider needs. Both *ethclient.Client and
// *MultiClient satisfy it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyedProvider signs with a locally held private key.
type KeyedProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
	backend Backend

	mu      sync.Mutex
	chainID *big.Int
}

// KeyedOption configures a KeyedProvider.
type KeyedOption func(*KeyedProvider)

// WithChainID pins the chain ID used for signing instead of asking the backend.
func WithChainID(id *big.Int) KeyedOption {
	return func(p *KeyedProvider) {
		p.chainID = id
	}
}

// NewKeyedProvider returns a provider for key. backend may be nil for offline signing when the
// chain ID is pinned with WithChainID.
func NewKeyedProvider(key *ecdsa.PrivateKey, backend Backend, opts ...KeyedOption) *KeyedProvider {
	p := &KeyedProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		backend: backend,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *KeyedProvider) Type() chains.BlockchainType { return chains.Ethereum }

// Address returns the provider's only account.
func (p *KeyedProvider) Address() common.Address { return p.address }

func (p *KeyedProvider) Accounts(context.Context) ([]common.Address, error) {
	return []common.Address{p.address}, nil
}

// SignMessage returns a 65 byte EIP-191 signature with V in {27, 28}, as personal_sign does.
func (p *KeyedProvider) SignMessage(_ context.Context, account common.Address, msg []byte) ([]byte, error) {
	if account != p.address {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, account.Hex())
	}

	sig, err := crypto.Sign(accounts.TextHash(msg), p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return sig, nil
}

func (p *KeyedProvider) SignTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	chainID, err := p.resolveChainID(ctx)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return signed, nil
}

// SendTransaction signs tx when needed and submits it through the backend.
func (p *KeyedProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	if p.backend == nil {
		return common.Hash{}, ErrNoBackend
	}

	signed := tx
	if !isSigned(tx) {
		var err error
		if signed, err = p.SignTransaction(ctx, tx); err != nil {
			return common.Hash{}, err
		}
	}

	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signed.Hash(), nil
}

func (p *KeyedProvider) resolveChainID(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.chainID != nil {
		return p.chainID, nil
	}
	if p.backend == nil {
		return nil, ErrNoBackend
	}

	id, err := p.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	p.chainID = id

	return id, nil
}
