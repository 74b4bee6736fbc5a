package chains

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// WalletFlags are the capability flags a host-injected wallet advertises about itself.
type WalletFlags struct {
	IsMetaMask       bool `json:"isMetaMask,omitempty" yaml:"is_metamask" mapstructure:"is_metamask"`
	IsCoinbaseWallet bool `json:"isCoinbaseWallet,omitempty" yaml:"is_coinbase_wallet" mapstructure:"is_coinbase_wallet"`
	IsTrust          bool `json:"isTrust,omitempty" yaml:"is_trust" mapstructure:"is_trust"`
	IsBraveWallet    bool `json:"isBraveWallet,omitempty" yaml:"is_brave_wallet" mapstructure:"is_brave_wallet"`
	IsPhantom        bool `json:"isPhantom,omitempty" yaml:"is_phantom" mapstructure:"is_phantom"`
	IsSolflare       bool `json:"isSolflare,omitempty" yaml:"is_solflare" mapstructure:"is_solflare"`
	IsHiro           bool `json:"isHiro,omitempty" yaml:"is_hiro" mapstructure:"is_hiro"`
}

// EthereumWallet reports whether the flags name a recognized Ethereum wallet.
func (f WalletFlags) EthereumWallet() bool {
	return f.IsMetaMask || f.IsCoinbaseWallet || f.IsTrust || f.IsBraveWallet
}

// SolanaWallet reports whether the flags name a recognized Solana wallet.
func (f WalletFlags) SolanaWallet() bool {
	return f.IsPhantom || f.IsSolflare || f.IsTrust
}

// InjectedWallet is any wallet object a host exposes under a well-known global name.
type InjectedWallet interface {
	Flags() WalletFlags
}

// InjectedEthereum is an EIP-1193 style provider: every operation is a JSON-RPC request.
type InjectedEthereum interface {
	InjectedWallet
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// LegacyWeb3 is the pre EIP-1193 web3 global; only its current provider is used.
type LegacyWeb3 interface {
	CurrentProvider() InjectedEthereum
}

// ConnectOptions controls how an injected Solana wallet connects.
type ConnectOptions struct {
	// OnlyIfTrusted connects silently when the site is already trusted and fails otherwise.
	// Resolution always passes false so the user is explicitly prompted.
	OnlyIfTrusted bool
}

// InjectedSolana is a Solana wallet injected by the host (Phantom, Solflare style).
// PublicKey returns the zero key until Connect has succeeded.
type InjectedSolana interface {
	InjectedWallet
	Connect(ctx context.Context, opts ConnectOptions) error
	PublicKey() solana.PublicKey
	SignMessage(ctx context.Context, msg []byte) (solana.Signature, error)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// EnvironmentProbe reads the wallets a host environment exposes. Each method returns nil when the
// corresponding global is absent. Implementations must not connect anything while probing.
type EnvironmentProbe interface {
	// HasGlobalContext reports whether the host has a global execution context at all.
	HasGlobalContext() bool
	// Ethereum is the standard injected Ethereum provider.
	Ethereum() InjectedEthereum
	// LegacyWeb3 is the legacy web3 global.
	LegacyWeb3() LegacyWeb3
	Phantom() InjectedWallet
	Solflare() InjectedWallet
	TrustWallet() InjectedWallet
	CoinbaseWallet() InjectedWallet
	Hiro() InjectedWallet
}
