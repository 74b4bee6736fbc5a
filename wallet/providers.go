package wallet

import (
	"fmt"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/chains/solana"
)

// Backends are the network clients keyring providers submit transactions through. Any of them
// may be nil, in which case the provider can sign but not send.
type Backends struct {
	Ethereum ethereum.Backend
	Solana   *solana.Client
	Bitcoin  bitcoin.Broadcaster
}

// Registrar accepts providers; *provider.Manager implements it.
type Registrar interface {
	RegisterProvider(t chains.BlockchainType, p chains.BlockchainProvider) error
}

// Providers derives one provider per supported chain from the unlocked keyring.
func (k *Keyring) Providers(b Backends) ([]chains.BlockchainProvider, error) {
	ethKey, err := k.EthereumKey()
	if err != nil {
		return nil, err
	}
	solKey, err := k.SolanaKey()
	if err != nil {
		return nil, err
	}
	btcKey, err := k.BitcoinKey()
	if err != nil {
		return nil, err
	}

	btcProvider, err := bitcoin.NewKeyProvider(btcKey, bitcoin.Params(k.network), b.Bitcoin)
	if err != nil {
		return nil, fmt.Errorf("bitcoin provider: %w", err)
	}

	return []chains.BlockchainProvider{
		ethereum.NewKeyedProvider(ethKey, b.Ethereum),
		solana.NewKeypairProvider(solKey, b.Solana),
		btcProvider,
	}, nil
}

// RegisterWith registers every keyring provider with r, replacing providers of the same types.
func (k *Keyring) RegisterWith(r Registrar, b Backends) error {
	providers, err := k.Providers(b)
	if err != nil {
		return err
	}
	for _, p := range providers {
		if err := r.RegisterProvider(p.Type(), p); err != nil {
			return fmt.Errorf("register %s provider: %w", p.Type(), err)
		}
	}

	return nil
}
