package provider

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/pkg/logger"
)

var _ chains.Disconnector = (*Manager)(nil)

// RPCAdapter wraps a raw injected Ethereum wallet into an EthereumProvider.
type RPCAdapter interface {
	Adapt(ctx context.Context, raw chains.InjectedEthereum) (chains.EthereumProvider, error)
}

// RPCAdapterFunc adapts a function to RPCAdapter.
type RPCAdapterFunc func(ctx context.Context, raw chains.InjectedEthereum) (chains.EthereumProvider, error)

func (f RPCAdapterFunc) Adapt(ctx context.Context, raw chains.InjectedEthereum) (chains.EthereumProvider, error) {
	return f(ctx, raw)
}

// Option configures a Manager.
type Option func(*Manager)

// WithProbe sets the host environment probed for injected wallets. Without it the Manager runs
// headless and only serves registered providers.
func WithProbe(probe chains.EnvironmentProbe) Option {
	return func(m *Manager) {
		if probe != nil {
			m.probe = probe
		}
	}
}

// WithRPCAdapter replaces the default EIP-1193 adapter.
func WithRPCAdapter(a RPCAdapter) Option {
	return func(m *Manager) {
		if a != nil {
			m.adapter = a
		}
	}
}

// WithLogger sets the logger; the Manager logs under the "provider" name.
func WithLogger(lggr logger.Logger) Option {
	return func(m *Manager) {
		if lggr != nil {
			m.lggr = lggr
		}
	}
}

// Manager resolves providers per blockchain type: registered providers first, then the wallets
// of the priority list in order, then generic detection in the host.
//
// The registry lock is never held across a provider call. Two concurrent resolutions for the
// same type may both detect a provider; the last one registered wins.
type Manager struct {
	config    WalletConfig
	probe     chains.EnvironmentProbe
	adapter   RPCAdapter
	lggr      logger.Logger
	sessionID uuid.UUID

	mu        sync.Mutex
	providers map[chains.BlockchainType]*registration
	selected  *registration
}

// registration holds one registry entry. Entries are compared by pointer, never by provider value.
type registration struct {
	provider chains.BlockchainProvider
}

// NewManager returns a Manager for cfg, which may be nil.
func NewManager(cfg *WalletConfig, opts ...Option) *Manager {
	m := &Manager{
		probe:     headless{},
		adapter:   RPCAdapterFunc(ethereum.Wrap),
		lggr:      logger.Nop(),
		sessionID: uuid.New(),
		providers: make(map[chains.BlockchainType]*registration),
	}
	if cfg != nil {
		m.config = cfg.clone()
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lggr = m.lggr.Named("provider").With("session", m.sessionID.String())

	m.applyAutoConnect()

	return m
}

// applyAutoConnect reports, per configured type, whether the host currently offers a candidate.
// Connection stays lazy.
func (m *Manager) applyAutoConnect() {
	for _, t := range m.config.AutoConnectWallets {
		switch t {
		case chains.Ethereum:
			present := m.probe.HasGlobalContext() && (m.probe.Ethereum() != nil || m.probe.LegacyWeb3() != nil)
			m.lggr.Infow("auto-connect deferred to first resolution", "type", t, "hostWallet", present)
		case chains.Solana:
			present := m.probe.HasGlobalContext() && (m.probe.Phantom() != nil || m.probe.Solflare() != nil)
			m.lggr.Infow("auto-connect deferred to first resolution", "type", t, "hostWallet", present)
		case chains.Bitcoin:
			m.lggr.Warnw("auto-connect requested but bitcoin wallets cannot be detected; register a provider explicitly", "type", t)
		default:
			m.lggr.Warnw("unknown blockchain type in auto-connect list", "type", t)
		}
	}
}

// Config returns a copy of the wallet configuration.
func (m *Manager) Config() WalletConfig { return m.config.clone() }

// SessionID identifies this Manager in logs.
func (m *Manager) SessionID() uuid.UUID { return m.sessionID }

// Probe returns the host environment the Manager detects wallets in.
func (m *Manager) Probe() chains.EnvironmentProbe { return m.probe }

// RegisterProvider stores p as the provider for t, replacing any previous one without
// disconnecting it. Only the capability tag is checked. Replacing the selected provider clears
// the selection.
func (m *Manager) RegisterProvider(t chains.BlockchainType, p chains.BlockchainProvider) error {
	if err := checkTag(t, p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.providers[t]
	if ok && sameInstance(old.provider, p) {
		return nil
	}
	if ok && old == m.selected {
		m.selected = nil
	}
	m.providers[t] = &registration{provider: p}

	m.lggr.Debugw("provider registered", "type", t, "provider", fmt.Sprintf("%T", p))

	return nil
}

// GetProvider returns the registered provider for t.
func (m *Manager) GetProvider(t chains.BlockchainType) (chains.BlockchainProvider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.providers[t]
	if !ok {
		return nil, false
	}

	return r.provider, true
}

// HasProvider reports whether a provider is registered for t.
func (m *Manager) HasProvider(t chains.BlockchainType) bool {
	_, ok := m.GetProvider(t)
	return ok
}

// RegisteredTypes returns the types with a registered provider, sorted.
func (m *Manager) RegisteredTypes() []chains.BlockchainType {
	m.mu.Lock()
	types := make([]chains.BlockchainType, 0, len(m.providers))
	for t := range m.providers {
		types = append(types, t)
	}
	m.mu.Unlock()

	slices.Sort(types)

	return types
}

// SelectedProvider returns the provider most recently resolved by detection or priority connect.
func (m *Manager) SelectedProvider() (chains.BlockchainProvider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return nil, false
	}

	return m.selected.provider, true
}

// GetOrDetectProvider returns the registered provider for t, or resolves one from the priority
// list and then generic detection. The resolved provider is registered and selected. When every
// candidate fails the error is a *NoProviderError matching ErrNoProvider.
func (m *Manager) GetOrDetectProvider(ctx context.Context, t chains.BlockchainType) (chains.BlockchainProvider, error) {
	if p, ok := m.GetProvider(t); ok {
		return p, nil
	}

	var attempts []*CandidateError
	for _, id := range m.config.Priority {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve %s provider: %w", t, err)
		}

		p, cerr := m.tryConnectWalletByID(ctx, id, t)
		if cerr == nil {
			m.adopt(t, p, "priority:"+id)
			return p, nil
		}
		m.logCandidate(cerr)
		attempts = append(attempts, cerr)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve %s provider: %w", t, err)
	}

	p, source, failures := m.detectGenericProvider(ctx, t)
	for _, f := range failures {
		m.logCandidate(f)
	}
	attempts = append(attempts, failures...)
	if p != nil {
		m.adopt(t, p, source)
		return p, nil
	}

	err := &NoProviderError{Type: t, Attempts: attempts}
	m.lggr.Errorw("no provider available", "type", t, "attempts", len(attempts))

	return nil, err
}

func (m *Manager) adopt(t chains.BlockchainType, p chains.BlockchainProvider, source string) {
	m.mu.Lock()
	r := &registration{provider: p}
	m.providers[t] = r
	m.selected = r
	m.mu.Unlock()

	m.lggr.Infow("provider resolved", "type", t, "source", source)
}

func (m *Manager) logCandidate(e *CandidateError) {
	switch {
	case e.absent():
		m.lggr.Debugw("candidate not present", "source", e.Source, "type", e.Type, "reason", e.Err)
	case errors.Is(e.Err, ErrDetectionUnsupported):
		m.lggr.Warnw("generic detection is not implemented for this blockchain", "source", e.Source, "type", e.Type)
	default:
		m.lggr.Warnw("candidate failed", "source", e.Source, "type", e.Type, "error", e.Err)
	}
}

// Disconnect disconnects the selected provider, if any. A failing disconnect is logged. The
// selection is always cleared, and so is the registry entry when it still holds the selected
// registration, so the next resolution detects afresh.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	sel := m.selected
	m.mu.Unlock()

	if sel == nil {
		return nil
	}

	t := sel.provider.Type()
	if d, ok := sel.provider.(chains.Disconnector); ok {
		if err := d.Disconnect(ctx); err != nil {
			m.lggr.Warnw("provider disconnect failed", "type", t, "error", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.selected = nil
	for rt, r := range m.providers {
		if r == sel {
			delete(m.providers, rt)
		}
	}
	m.lggr.Infow("provider disconnected", "type", t)

	return nil
}

// sameInstance reports whether a and b are the same provider. Values that cannot be compared
// at runtime, including interfaces holding slices or maps, never match.
func sameInstance(a, b chains.BlockchainProvider) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}

	return va.Equal(vb)
}

// headless is the default probe: a host without any global execution context.
type headless struct{}

func (headless) HasGlobalContext() bool { return false }
func (headless) Ethereum() chains.InjectedEthereum { return nil }
func (headless) LegacyWeb3() chains.LegacyWeb3 { return nil }
func (headless) Phantom() chains.InjectedWallet { return nil }
func (headless) Solflare() chains.InjectedWallet { return nil }
func (headless) TrustWallet() chains.InjectedWallet { return nil }
func (headless) CoinbaseWallet() chains.InjectedWallet { return nil }
func (headless) Hiro() chains.InjectedWallet { return nil }
