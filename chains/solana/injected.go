package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/chinmay1088/vaultkit/chains"
)

var (
	_ chains.SolanaProvider = (*InjectedProvider)(nil)
	_ chains.Disconnector   = (*InjectedProvider)(nil)
)

// InjectedProvider exposes a connected injected Solana wallet as a chains.SolanaProvider.
type InjectedProvider struct {
	raw chains.InjectedSolana
}

// NewInjectedProvider wraps raw, which should already be connected.
func NewInjectedProvider(raw chains.InjectedSolana) *InjectedProvider {
	return &InjectedProvider{raw: raw}
}

func (p *InjectedProvider) Type() chains.BlockchainType { return chains.Solana }

// Raw returns the wrapped wallet.
func (p *InjectedProvider) Raw() chains.InjectedSolana { return p.raw }

func (p *InjectedProvider) PublicKey() solana.PublicKey { return p.raw.PublicKey() }

func (p *InjectedProvider) SignMessage(ctx context.Context, msg []byte) (solana.Signature, error) {
	return p.raw.SignMessage(ctx, msg)
}

func (p *InjectedProvider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	return p.raw.SignTransaction(ctx, tx)
}

func (p *InjectedProvider) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return p.raw.SendTransaction(ctx, tx)
}

// Disconnect disconnects the wallet when it supports it and is a no-op otherwise.
func (p *InjectedProvider) Disconnect(ctx context.Context) error {
	if d, ok := p.raw.(chains.Disconnector); ok {
		return d.Disconnect(ctx)
	}

	return nil
}
