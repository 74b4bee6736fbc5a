package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/chinmay1088/vaultkit/chains"
)

var (
	_ chains.SolanaProvider = (*KeypairProvider)(nil)
	_ chains.InjectedSolana = (*KeypairWallet)(nil)
	_ chains.Disconnector   = (*KeypairWallet)(nil)
)

var (
	// ErrNoClient is returned when a transaction must be sent but no RPC client is configured.
	ErrNoClient = errors.New("no RPC client configured")
	// ErrNotConnected is returned by a wallet used before Connect.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrNotTrusted is returned by a silent connect to a wallet that never approved the caller.
	ErrNotTrusted = errors.New("wallet has not trusted this application")
	// ErrMissingSigner is returned when a transaction needs a signature the key cannot provide.
	ErrMissingSigner = errors.New("transaction requires a signer not held by this wallet")
)

// KeypairProvider signs with a locally held ed25519 key.
type KeypairProvider struct {
	key    solana.PrivateKey
	client *Client
}

// NewKeypairProvider returns a provider for key. client may be nil for offline signing.
func NewKeypairProvider(key solana.PrivateKey, client *Client) *KeypairProvider {
	return &KeypairProvider{key: key, client: client}
}

func (p *KeypairProvider) Type() chains.BlockchainType { return chains.Solana }

func (p *KeypairProvider) PublicKey() solana.PublicKey { return p.key.PublicKey() }

func (p *KeypairProvider) SignMessage(_ context.Context, msg []byte) (solana.Signature, error) {
	return p.key.Sign(msg)
}

func (p *KeypairProvider) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if err := signWith(tx, p.key); err != nil {
		return nil, err
	}

	return tx, nil
}

// SendTransaction signs tx when it carries no signatures and submits it.
func (p *KeypairProvider) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if p.client == nil {
		return solana.Signature{}, ErrNoClient
	}
	if len(tx.Signatures) == 0 {
		if err := signWith(tx, p.key); err != nil {
			return solana.Signature{}, err
		}
	}

	return p.client.Send(ctx, tx)
}

func signWith(tx *solana.Transaction, key solana.PrivateKey) error {
	pub := key.PublicKey()
	_, err := tx.Sign(func(signer solana.PublicKey) *solana.PrivateKey {
		if signer.Equals(pub) {
			return &key
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingSigner, err)
	}

	return nil
}

// KeypairWallet is an injectable Solana wallet backed by a local key. Like a browser wallet it
// hides its public key until connected and only connects silently once it has been approved.
type KeypairWallet struct {
	flags  chains.WalletFlags
	signer *KeypairProvider

	mu        sync.Mutex
	connected bool
	trusted   bool
}

// NewKeypairWallet returns a disconnected wallet.
func NewKeypairWallet(key solana.PrivateKey, client *Client, flags chains.WalletFlags) *KeypairWallet {
	return &KeypairWallet{flags: flags, signer: NewKeypairProvider(key, client)}
}

// LoadKeypairWallet reads a solana-keygen JSON keypair file.
func LoadKeypairWallet(path string, client *Client, flags chains.WalletFlags) (*KeypairWallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}

	return NewKeypairWallet(key, client, flags), nil
}

func (w *KeypairWallet) Flags() chains.WalletFlags { return w.flags }

// Connect approves the caller. A connect with OnlyIfTrusted fails unless an earlier explicit
// connect succeeded.
func (w *KeypairWallet) Connect(_ context.Context, opts chains.ConnectOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if opts.OnlyIfTrusted && !w.trusted {
		return ErrNotTrusted
	}
	w.connected = true
	w.trusted = true

	return nil
}

func (w *KeypairWallet) Disconnect(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.connected = false

	return nil
}

// Connected reports whether the wallet is currently connected.
func (w *KeypairWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.connected
}

func (w *KeypairWallet) PublicKey() solana.PublicKey {
	if !w.Connected() {
		return solana.PublicKey{}
	}

	return w.signer.PublicKey()
}

func (w *KeypairWallet) SignMessage(ctx context.Context, msg []byte) (solana.Signature, error) {
	if !w.Connected() {
		return solana.Signature{}, ErrNotConnected
	}

	return w.signer.SignMessage(ctx, msg)
}

func (w *KeypairWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if !w.Connected() {
		return nil, ErrNotConnected
	}

	return w.signer.SignTransaction(ctx, tx)
}

func (w *KeypairWallet) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if !w.Connected() {
		return solana.Signature{}, ErrNotConnected
	}

	return w.signer.SendTransaction(ctx, tx)
}
