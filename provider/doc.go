// Package provider resolves signing providers for each supported blockchain.
//
// A Manager keeps at most one provider per blockchain type. GetOrDetectProvider returns the
// registered provider when there is one. Otherwise it tries the wallet ids of the configured
// priority list in order, then falls back to generic detection of the wallets the host
// environment injects. The first candidate that connects is registered and becomes the selected
// provider, which Disconnect releases.
//
// Host globals are never read directly: the Manager sees them through a chains.EnvironmentProbe,
// see package hostenv for implementations.
//
//	m := provider.NewManager(&provider.WalletConfig{Priority: []string{"phantom"}},
//		provider.WithProbe(host), provider.WithLogger(lggr))
//	p, err := m.GetOrDetectProvider(ctx, chains.Solana)
//	if errors.Is(err, provider.ErrNoProvider) {
//		// nothing available
//	}
package provider
