package provider

import (
	"slices"
	"strings"

	"github.com/chinmay1088/vaultkit/chains"
)

// globalFunc reads one well-known wallet global from a host.
type globalFunc func(chains.EnvironmentProbe) chains.InjectedWallet

// knownWallets maps wallet ids usable in a priority list to the host global they are read from.
var knownWallets = map[string]globalFunc{
	"phantom":  chains.EnvironmentProbe.Phantom,
	"metamask": injectedEthereum,
	"solflare": chains.EnvironmentProbe.Solflare,
	"trust":    chains.EnvironmentProbe.TrustWallet,
	"coinbase": chains.EnvironmentProbe.CoinbaseWallet,
	"hiro":     chains.EnvironmentProbe.Hiro,
}

var walletAliases = map[string]string{
	"trustwallet":    "trust",
	"coinbasewallet": "coinbase",
}

func injectedEthereum(p chains.EnvironmentProbe) chains.InjectedWallet {
	if eth := p.Ethereum(); eth != nil {
		return eth
	}

	return nil
}

// WalletIDs returns the wallet ids accepted in a priority list, sorted.
func WalletIDs() []string {
	ids := make([]string, 0, len(knownWallets))
	for id := range knownWallets {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// IsKnownWallet reports whether id, compared case-insensitively, names a known wallet.
func IsKnownWallet(id string) bool {
	_, ok := lookupWallet(id)
	return ok
}

// LookupWallet returns the wallet global named by id in probe, or nil when absent or unknown.
func LookupWallet(probe chains.EnvironmentProbe, id string) chains.InjectedWallet {
	global, ok := lookupWallet(id)
	if !ok {
		return nil
	}

	return global(probe)
}

func lookupWallet(id string) (globalFunc, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	if alias, ok := walletAliases[key]; ok {
		key = alias
	}
	global, ok := knownWallets[key]

	return global, ok
}
