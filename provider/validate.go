package provider

import (
	"fmt"

	"github.com/chinmay1088/vaultkit/chains"
)

// validateEthereumWallet accepts an injected wallet that advertises a recognized Ethereum flag and
// speaks the EIP-1193 request interface.
func validateEthereumWallet(w chains.InjectedWallet) (chains.InjectedEthereum, error) {
	if w == nil {
		return nil, ErrWalletNotPresent
	}
	if !w.Flags().EthereumWallet() {
		return nil, fmt.Errorf("%w: no Ethereum wallet flag", ErrCapabilityMismatch)
	}
	eth, ok := w.(chains.InjectedEthereum)
	if !ok {
		return nil, fmt.Errorf("%w: wallet cannot serve Ethereum requests", ErrInvalidProvider)
	}

	return eth, nil
}

// validateSolanaWallet accepts an injected wallet whose flags satisfy accept and that implements
// the injected Solana interface.
func validateSolanaWallet(w chains.InjectedWallet, accept func(chains.WalletFlags) bool) (chains.InjectedSolana, error) {
	if w == nil {
		return nil, ErrWalletNotPresent
	}
	if !accept(w.Flags()) {
		return nil, fmt.Errorf("%w: no Solana wallet flag", ErrCapabilityMismatch)
	}
	sol, ok := w.(chains.InjectedSolana)
	if !ok {
		return nil, fmt.Errorf("%w: wallet cannot connect or sign Solana transactions", ErrInvalidProvider)
	}

	return sol, nil
}

// validateSolanaConnected checks a Solana wallet exposes a public key after connecting.
func validateSolanaConnected(w chains.InjectedSolana) error {
	if w.PublicKey().IsZero() {
		return fmt.Errorf("%w: no public key after connect", ErrInvalidProvider)
	}

	return nil
}

// checkTag is the only check applied on registration: the provider exists and carries the tag
// it is registered under.
func checkTag(t chains.BlockchainType, p chains.BlockchainProvider) error {
	if p == nil {
		return fmt.Errorf("%w: nil provider", ErrInvalidProvider)
	}
	if got := p.Type(); got != t {
		return fmt.Errorf("%w: registering %s provider as %s", ErrTypeMismatch, got, t)
	}

	return nil
}

// validateProvider checks the tag and that p implements the capability set of its variant.
func validateProvider(t chains.BlockchainType, p chains.BlockchainProvider) error {
	if err := checkTag(t, p); err != nil {
		return err
	}

	var ok bool
	switch t {
	case chains.Ethereum:
		_, ok = p.(chains.EthereumProvider)
	case chains.Solana:
		_, ok = p.(chains.SolanaProvider)
	case chains.Bitcoin:
		_, ok = p.(chains.BitcoinProvider)
	default:
		ok = true
	}
	if !ok {
		return fmt.Errorf("%w: %T is not a %s provider", ErrInvalidProvider, p, t)
	}

	return nil
}
