// Package mocks holds testify mocks of the host and wallet interfaces the provider Manager uses.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"

	"github.com/chinmay1088/vaultkit/chains"
)

// T is the subset of testing.TB the constructors need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

var (
	_ chains.EnvironmentProbe = (*EnvironmentProbe)(nil)
	_ chains.InjectedEthereum = (*InjectedEthereum)(nil)
	_ chains.InjectedSolana   = (*InjectedSolana)(nil)
)

// EnvironmentProbe is a mock of chains.EnvironmentProbe.
type EnvironmentProbe struct {
	mock.Mock
}

// NewEnvironmentProbe returns a mock whose expectations are asserted at test cleanup.
func NewEnvironmentProbe(t T) *EnvironmentProbe {
	m := &EnvironmentProbe{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *EnvironmentProbe) HasGlobalContext() bool {
	return m.Called().Bool(0)
}

func (m *EnvironmentProbe) Ethereum() chains.InjectedEthereum {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(chains.InjectedEthereum)
}

func (m *EnvironmentProbe) LegacyWeb3() chains.LegacyWeb3 {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(chains.LegacyWeb3)
}

func (m *EnvironmentProbe) Phantom() chains.InjectedWallet        { return m.wallet("Phantom") }
func (m *EnvironmentProbe) Solflare() chains.InjectedWallet       { return m.wallet("Solflare") }
func (m *EnvironmentProbe) TrustWallet() chains.InjectedWallet    { return m.wallet("TrustWallet") }
func (m *EnvironmentProbe) CoinbaseWallet() chains.InjectedWallet { return m.wallet("CoinbaseWallet") }
func (m *EnvironmentProbe) Hiro() chains.InjectedWallet           { return m.wallet("Hiro") }

func (m *EnvironmentProbe) wallet(method string) chains.InjectedWallet {
	args := m.MethodCalled(method)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(chains.InjectedWallet)
}

// InjectedEthereum is a mock of chains.InjectedEthereum. Its flags are fixed at construction.
type InjectedEthereum struct {
	mock.Mock
	WalletFlags chains.WalletFlags
}

// NewInjectedEthereum returns a mock advertising flags.
func NewInjectedEthereum(t T, flags chains.WalletFlags) *InjectedEthereum {
	m := &InjectedEthereum{WalletFlags: flags}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *InjectedEthereum) Flags() chains.WalletFlags { return m.WalletFlags }

func (m *InjectedEthereum) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	args := m.Called(ctx, method, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(json.RawMessage), args.Error(1)
}

// InjectedSolana is a mock of chains.InjectedSolana that also implements chains.Disconnector.
type InjectedSolana struct {
	mock.Mock
	WalletFlags chains.WalletFlags
}

// NewInjectedSolana returns a mock advertising flags.
func NewInjectedSolana(t T, flags chains.WalletFlags) *InjectedSolana {
	m := &InjectedSolana{WalletFlags: flags}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *InjectedSolana) Flags() chains.WalletFlags { return m.WalletFlags }

func (m *InjectedSolana) Connect(ctx context.Context, opts chains.ConnectOptions) error {
	return m.Called(ctx, opts).Error(0)
}

func (m *InjectedSolana) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *InjectedSolana) PublicKey() solana.PublicKey {
	return m.Called().Get(0).(solana.PublicKey)
}

func (m *InjectedSolana) SignMessage(ctx context.Context, msg []byte) (solana.Signature, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *InjectedSolana) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*solana.Transaction), args.Error(1)
}

func (m *InjectedSolana) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}
