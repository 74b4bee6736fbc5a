// Package hostenv provides host environments for the provider Manager: an in-memory table of
// injected wallet globals, a headless host, and hosts built from configuration.
package hostenv

import (
	"slices"
	"strings"
	"sync"

	"github.com/chinmay1088/vaultkit/chains"
)

// Well-known global names a host injects wallets under.
const (
	GlobalEthereum       = "ethereum"
	GlobalWeb3           = "web3"
	GlobalPhantom        = "phantom"
	GlobalSolflare       = "solflare"
	GlobalTrustWallet    = "trustwallet"
	GlobalCoinbaseWallet = "coinbaseWalletExtension"
	GlobalHiro           = "HiroWalletProvider"
)

var globalNames = []string{
	GlobalEthereum, GlobalWeb3, GlobalPhantom, GlobalSolflare, GlobalTrustWallet, GlobalCoinbaseWallet, GlobalHiro,
}

// CanonicalName returns the well-known global matching name case-insensitively.
func CanonicalName(name string) (string, bool) {
	for _, g := range globalNames {
		if strings.EqualFold(g, strings.TrimSpace(name)) {
			return g, true
		}
	}

	return "", false
}

var (
	_ chains.EnvironmentProbe = (*Host)(nil)
	_ chains.LegacyWeb3       = Web3{}
)

// Web3 is the legacy web3 global: an object whose currentProvider is an injected wallet.
type Web3 struct {
	Provider chains.InjectedEthereum
}

func (w Web3) CurrentProvider() chains.InjectedEthereum { return w.Provider }

// Host is an in-memory global table. Reads go through the EnvironmentProbe methods, which only
// return values of the expected shape.
type Host struct {
	headless bool

	mu      sync.RWMutex
	globals map[string]any
}

// New returns a host with a global execution context and no globals installed.
func New() *Host {
	return &Host{globals: make(map[string]any)}
}

// Headless returns a host without a global execution context; every lookup is absent.
func Headless() *Host {
	return &Host{headless: true, globals: make(map[string]any)}
}

// Install sets a global. Installing nil removes it.
func (h *Host) Install(name string, v any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if v == nil {
		delete(h.globals, name)
		return
	}
	h.globals[name] = v
}

// Uninstall removes a global.
func (h *Host) Uninstall(name string) { h.Install(name, nil) }

// Lookup returns the raw value of a global.
func (h *Host) Lookup(name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v, ok := h.globals[name]

	return v, ok
}

// Names returns the installed global names, sorted.
func (h *Host) Names() []string {
	h.mu.RLock()
	names := make([]string, 0, len(h.globals))
	for name := range h.globals {
		names = append(names, name)
	}
	h.mu.RUnlock()

	slices.Sort(names)

	return names
}

// Close releases installed globals holding connections.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, v := range h.globals {
		switch c := v.(type) {
		case interface{ Close() }:
			c.Close()
		case Web3:
			if cc, ok := c.Provider.(interface{ Close() }); ok {
				cc.Close()
			}
		}
	}
}

func (h *Host) HasGlobalContext() bool { return !h.headless }

func (h *Host) Ethereum() chains.InjectedEthereum {
	eth, _ := h.get(GlobalEthereum).(chains.InjectedEthereum)
	return eth
}

func (h *Host) LegacyWeb3() chains.LegacyWeb3 {
	web3, _ := h.get(GlobalWeb3).(chains.LegacyWeb3)
	return web3
}

func (h *Host) Phantom() chains.InjectedWallet        { return h.wallet(GlobalPhantom) }
func (h *Host) Solflare() chains.InjectedWallet       { return h.wallet(GlobalSolflare) }
func (h *Host) TrustWallet() chains.InjectedWallet    { return h.wallet(GlobalTrustWallet) }
func (h *Host) CoinbaseWallet() chains.InjectedWallet { return h.wallet(GlobalCoinbaseWallet) }
func (h *Host) Hiro() chains.InjectedWallet           { return h.wallet(GlobalHiro) }

func (h *Host) wallet(name string) chains.InjectedWallet {
	w, _ := h.get(name).(chains.InjectedWallet)
	return w
}

func (h *Host) get(name string) any {
	if h.headless {
		return nil
	}
	v, _ := h.Lookup(name)

	return v
}
