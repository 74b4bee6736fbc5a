package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/provider/mocks"
)

type flagsOnly chains.WalletFlags

func (f flagsOnly) Flags() chains.WalletFlags { return chains.WalletFlags(f) }

func TestLookupWallet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"coinbase", "hiro", "metamask", "phantom", "solflare", "trust"}, WalletIDs())

	for _, id := range []string{"phantom", " Phantom ", "TrustWallet", "coinbasewallet", "METAMASK"} {
		assert.True(t, IsKnownWallet(id), id)
	}
	assert.False(t, IsKnownWallet("backpack"))

	hiro := flagsOnly{IsHiro: true}
	probe := mocks.NewEnvironmentProbe(t)
	probe.On("Hiro").Return(hiro).Once()

	assert.Equal(t, hiro, LookupWallet(probe, "hiro"))
	assert.Nil(t, LookupWallet(probe, "backpack"))
}

func TestValidateWallets(t *testing.T) {
	t.Parallel()

	_, err := validateEthereumWallet(nil)
	require.ErrorIs(t, err, ErrWalletNotPresent)

	_, err = validateEthereumWallet(flagsOnly{IsPhantom: true})
	require.ErrorIs(t, err, ErrCapabilityMismatch)

	_, err = validateEthereumWallet(flagsOnly{IsMetaMask: true})
	require.ErrorIs(t, err, ErrInvalidProvider, "flags alone cannot serve requests")

	eth := mocks.NewInjectedEthereum(t, chains.WalletFlags{IsBraveWallet: true})
	got, err := validateEthereumWallet(eth)
	require.NoError(t, err)
	assert.Same(t, eth, got)

	_, err = validateSolanaWallet(flagsOnly{IsMetaMask: true}, chains.WalletFlags.SolanaWallet)
	require.ErrorIs(t, err, ErrCapabilityMismatch)

	_, err = validateSolanaWallet(flagsOnly{IsPhantom: true}, chains.WalletFlags.SolanaWallet)
	require.ErrorIs(t, err, ErrInvalidProvider)

	sol := mocks.NewInjectedSolana(t, chains.WalletFlags{IsTrust: true})
	_, err = validateSolanaWallet(sol, func(f chains.WalletFlags) bool { return f.IsPhantom })
	require.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestTryConnectWalletByID(t *testing.T) {
	t.Parallel()

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		m := NewManager(nil, WithProbe(probe))

		_, cerr := m.tryConnectWalletByID(t.Context(), "backpack", chains.Solana)
		require.NotNil(t, cerr)
		require.ErrorIs(t, cerr, ErrUnknownWallet)
		assert.Equal(t, "priority:backpack", cerr.Source)
		assert.False(t, cerr.absent())
	})

	t.Run("solana wallet for ethereum", func(t *testing.T) {
		t.Parallel()

		phantom := mocks.NewInjectedSolana(t, chains.WalletFlags{IsPhantom: true})
		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		probe.On("Phantom").Return(phantom)
		m := NewManager(nil, WithProbe(probe))

		_, cerr := m.tryConnectWalletByID(t.Context(), "phantom", chains.Ethereum)
		require.ErrorIs(t, cerr, ErrCapabilityMismatch)
	})

	t.Run("bitcoin is a capability mismatch", func(t *testing.T) {
		t.Parallel()

		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		probe.On("Hiro").Return(flagsOnly{IsHiro: true})
		m := NewManager(nil, WithProbe(probe))

		_, cerr := m.tryConnectWalletByID(t.Context(), "hiro", chains.Bitcoin)
		require.ErrorIs(t, cerr, ErrCapabilityMismatch)
	})

	t.Run("absent wallet", func(t *testing.T) {
		t.Parallel()

		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		probe.On("CoinbaseWallet").Return(nil)
		m := NewManager(nil, WithProbe(probe))

		_, cerr := m.tryConnectWalletByID(t.Context(), "coinbase", chains.Ethereum)
		require.ErrorIs(t, cerr, ErrWalletNotPresent)
		assert.True(t, cerr.absent())
	})

	t.Run("zero public key after connect", func(t *testing.T) {
		t.Parallel()

		solflare := mocks.NewInjectedSolana(t, chains.WalletFlags{IsSolflare: true})
		solflare.On("Connect", mock.Anything, chains.ConnectOptions{}).Return(nil)
		solflare.On("PublicKey").Return(solana.PublicKey{})
		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		probe.On("Solflare").Return(solflare)
		m := NewManager(nil, WithProbe(probe))

		_, cerr := m.tryConnectWalletByID(t.Context(), "solflare", chains.Solana)
		require.ErrorIs(t, cerr, ErrInvalidProvider)
	})

	t.Run("ethereum wallet without accounts", func(t *testing.T) {
		t.Parallel()

		eth := mocks.NewInjectedEthereum(t, chains.WalletFlags{IsMetaMask: true})
		eth.On("Request", mock.Anything, "eth_requestAccounts", mock.Anything).Return(json.RawMessage(`[]`), nil)
		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		probe.On("Ethereum").Return(eth)
		m := NewManager(nil, WithProbe(probe))

		_, cerr := m.tryConnectWalletByID(t.Context(), "metamask", chains.Ethereum)
		require.ErrorIs(t, cerr, ethereum.ErrNoAccounts)
	})

	t.Run("adapter failure", func(t *testing.T) {
		t.Parallel()

		eth := mocks.NewInjectedEthereum(t, chains.WalletFlags{IsTrust: true})
		eth.On("Request", mock.Anything, "eth_requestAccounts", mock.Anything).
			Return(json.RawMessage(`["0x00000000000000000000000000000000000000bb"]`), nil)
		probe := mocks.NewEnvironmentProbe(t)
		probe.On("HasGlobalContext").Return(true)
		probe.On("TrustWallet").Return(eth)
		adapterErr := errors.New("unsupported transport")
		m := NewManager(nil, WithProbe(probe), WithRPCAdapter(RPCAdapterFunc(
			func(_ context.Context, _ chains.InjectedEthereum) (chains.EthereumProvider, error) {
				return nil, adapterErr
			})))

		_, cerr := m.tryConnectWalletByID(t.Context(), "trust", chains.Ethereum)
		require.ErrorIs(t, cerr, adapterErr)
	})
}

func TestNoProviderError(t *testing.T) {
	t.Parallel()

	err := &NoProviderError{
		Type: chains.Solana,
		Attempts: []*CandidateError{
			candidateErr("priority:phantom", chains.Solana, ErrWalletNotPresent),
			candidateErr("generic:solflare", chains.Solana, ErrCapabilityMismatch),
		},
	}

	require.ErrorIs(t, err, ErrNoProvider)
	require.ErrorIs(t, err, ErrCapabilityMismatch)
	require.NotErrorIs(t, err, ErrUnknownWallet)
	assert.Equal(t,
		"no provider available for solana: priority:phantom (solana): wallet is not present in the host; "+
			"generic:solflare (solana): wallet does not support the requested blockchain",
		err.Error())

	assert.Equal(t, "no provider available for bitcoin", (&NoProviderError{Type: chains.Bitcoin}).Error())
}

func TestSameInstance(t *testing.T) {
	t.Parallel()

	a, b := solanaProvider{id: 1}, solanaProvider{id: 1}
	assert.True(t, sameInstance(a, b), "comparable values compare by value")
	assert.True(t, sameInstance(nil, nil))
	assert.False(t, sameInstance(a, nil))

	s1, s2 := sliceProvider{1}, sliceProvider{1}
	assert.False(t, sameInstance(s1, s2), "non-comparable providers never match")

	i1, i2 := ifaceProvider{inner: []int{1}}, ifaceProvider{inner: []int{1}}
	assert.NotPanics(t, func() {
		assert.False(t, sameInstance(i1, i2), "interfaces holding slices never match")
	})
	assert.True(t, sameInstance(ifaceProvider{inner: 7}, ifaceProvider{inner: 7}))

	p := &solanaProvider{id: 2}
	assert.True(t, sameInstance(p, p))
	assert.False(t, sameInstance(p, &solanaProvider{id: 2}), "pointers compare by address")
}

type solanaProvider struct{ id int }

func (solanaProvider) Type() chains.BlockchainType { return chains.Solana }

type sliceProvider []int

func (sliceProvider) Type() chains.BlockchainType { return chains.Solana }

type ifaceProvider struct{ inner any }

func (ifaceProvider) Type() chains.BlockchainType { return chains.Solana }
