package provider

import (
	"context"
	"fmt"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/chains/solana"
)

// tryConnectWalletByID connects the wallet named id from the fixed wallet table for type t.
func (m *Manager) tryConnectWalletByID(ctx context.Context, id string, t chains.BlockchainType) (chains.BlockchainProvider, *CandidateError) {
	source := "priority:" + id
	if !m.probe.HasGlobalContext() {
		return nil, candidateErr(source, t, ErrNoGlobalContext)
	}
	global, ok := lookupWallet(id)
	if !ok {
		return nil, candidateErr(source, t, ErrUnknownWallet)
	}
	w := global(m.probe)
	if w == nil {
		return nil, candidateErr(source, t, ErrWalletNotPresent)
	}

	var (
		p   chains.BlockchainProvider
		err error
	)
	switch t {
	case chains.Ethereum:
		var eth chains.InjectedEthereum
		if eth, err = validateEthereumWallet(w); err == nil {
			p, err = m.connectEthereum(ctx, eth, true)
		}
	case chains.Solana:
		var sol chains.InjectedSolana
		if sol, err = validateSolanaWallet(w, chains.WalletFlags.SolanaWallet); err == nil {
			p, err = m.connectSolana(ctx, sol)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrCapabilityMismatch, t)
	}
	if err != nil {
		return nil, candidateErr(source, t, err)
	}

	return p, nil
}

// detectGenericProvider probes the host's well-known globals for any wallet serving t. It
// returns the first provider that connects, or the reason every candidate failed.
func (m *Manager) detectGenericProvider(ctx context.Context, t chains.BlockchainType) (chains.BlockchainProvider, string, []*CandidateError) {
	if !m.probe.HasGlobalContext() {
		return nil, "", []*CandidateError{candidateErr("generic:"+t.String(), t, ErrNoGlobalContext)}
	}

	var candidates []candidate
	switch t {
	case chains.Ethereum:
		candidates = m.ethereumCandidates()
	case chains.Solana:
		candidates = m.solanaCandidates()
	default:
		return nil, "", []*CandidateError{candidateErr("generic:"+t.String(), t, ErrDetectionUnsupported)}
	}

	var failures []*CandidateError
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			failures = append(failures, candidateErr(c.source, t, err))
			break
		}
		p, err := c.connect(ctx)
		if err == nil {
			return p, c.source, failures
		}
		failures = append(failures, candidateErr(c.source, t, err))
	}

	return nil, "", failures
}

type candidate struct {
	source  string
	connect func(context.Context) (chains.BlockchainProvider, error)
}

func (m *Manager) ethereumCandidates() []candidate {
	return []candidate{
		{
			source: "generic:ethereum",
			connect: func(ctx context.Context) (chains.BlockchainProvider, error) {
				eth := m.probe.Ethereum()
				if eth == nil {
					return nil, ErrWalletNotPresent
				}

				return m.connectEthereum(ctx, eth, true)
			},
		},
		{
			source: "generic:web3",
			connect: func(ctx context.Context) (chains.BlockchainProvider, error) {
				web3 := m.probe.LegacyWeb3()
				if web3 == nil {
					return nil, ErrWalletNotPresent
				}
				current := web3.CurrentProvider()
				if current == nil {
					return nil, fmt.Errorf("%w: web3 has no current provider", ErrWalletNotPresent)
				}

				return m.connectEthereum(ctx, current, false)
			},
		},
	}
}

func (m *Manager) solanaCandidates() []candidate {
	solanaGlobal := func(source string, global globalFunc, accept func(chains.WalletFlags) bool) candidate {
		return candidate{
			source: source,
			connect: func(ctx context.Context) (chains.BlockchainProvider, error) {
				sol, err := validateSolanaWallet(global(m.probe), accept)
				if err != nil {
					return nil, err
				}

				return m.connectSolana(ctx, sol)
			},
		}
	}

	return []candidate{
		solanaGlobal("generic:phantom", chains.EnvironmentProbe.Phantom, func(f chains.WalletFlags) bool { return f.IsPhantom }),
		solanaGlobal("generic:solflare", chains.EnvironmentProbe.Solflare, func(f chains.WalletFlags) bool { return f.IsSolflare }),
	}
}

// connectEthereum optionally requests account access and wraps raw with the RPC adapter.
func (m *Manager) connectEthereum(ctx context.Context, raw chains.InjectedEthereum, requestAccounts bool) (chains.BlockchainProvider, error) {
	if requestAccounts {
		accts, err := ethereum.NewInjectedProvider(raw).RequestAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to request accounts: %w", err)
		}
		if len(accts) == 0 {
			return nil, ethereum.ErrNoAccounts
		}
	}

	p, err := m.adapter.Adapt(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("rpc adapter: %w", err)
	}
	if err := validateProvider(chains.Ethereum, p); err != nil {
		return nil, err
	}

	return p, nil
}

// connectSolana asks the wallet to connect with an explicit user prompt and tags it as a provider.
func (m *Manager) connectSolana(ctx context.Context, raw chains.InjectedSolana) (chains.BlockchainProvider, error) {
	if err := raw.Connect(ctx, chains.ConnectOptions{OnlyIfTrusted: false}); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := validateSolanaConnected(raw); err != nil {
		return nil, err
	}

	return solana.NewInjectedProvider(raw), nil
}
