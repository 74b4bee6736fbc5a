package hostenv_test

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/vaultkit/chains"
	ethchain "github.com/chinmay1088/vaultkit/chains/ethereum"
	solchain "github.com/chinmay1088/vaultkit/chains/solana"
	"github.com/chinmay1088/vaultkit/config"
	"github.com/chinmay1088/vaultkit/hostenv"
	"github.com/chinmay1088/vaultkit/pkg/logger"
	"github.com/chinmay1088/vaultkit/provider"
)

type flagsOnly chains.WalletFlags

func (f flagsOnly) Flags() chains.WalletFlags { return chains.WalletFlags(f) }

var nodeAccount = common.HexToAddress("0x00000000000000000000000000000000000000cc")

type ethService struct{}

func (ethService) Accounts() []common.Address { return []common.Address{nodeAccount} }

func newNode(t *testing.T) string {
	t.Helper()

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", ethService{}))
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
	})

	return ts.URL
}

func writeKeypair(t *testing.T) (string, solana.PublicKey) {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path, key.PublicKey()
}

func TestHost(t *testing.T) {
	t.Parallel()

	h := hostenv.New()
	assert.True(t, h.HasGlobalContext())
	assert.Nil(t, h.Phantom())
	assert.Nil(t, h.Ethereum())

	phantom := flagsOnly{IsPhantom: true}
	h.Install(hostenv.GlobalPhantom, phantom)
	h.Install(hostenv.GlobalHiro, "not a wallet")
	assert.Equal(t, phantom, h.Phantom())
	assert.Nil(t, h.Hiro(), "values of the wrong shape are absent")
	assert.Nil(t, h.Ethereum(), "flags alone are not an ethereum provider")
	assert.Equal(t, []string{hostenv.GlobalHiro, hostenv.GlobalPhantom}, h.Names())

	h.Uninstall(hostenv.GlobalPhantom)
	assert.Nil(t, h.Phantom())
	_, ok := h.Lookup(hostenv.GlobalPhantom)
	assert.False(t, ok)

	headless := hostenv.Headless()
	headless.Install(hostenv.GlobalPhantom, phantom)
	assert.False(t, headless.HasGlobalContext())
	assert.Nil(t, headless.Phantom())
}

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	name, ok := hostenv.CanonicalName("hirowalletprovider")
	require.True(t, ok)
	assert.Equal(t, hostenv.GlobalHiro, name)

	name, ok = hostenv.CanonicalName("CoinbaseWalletExtension")
	require.True(t, ok)
	assert.Equal(t, hostenv.GlobalCoinbaseWallet, name)

	_, ok = hostenv.CanonicalName("backpack")
	assert.False(t, ok)
}

func TestFromConfig_Headless(t *testing.T) {
	t.Parallel()

	h, err := hostenv.FromConfig(t.Context(), &config.Config{}, logger.Test(t))
	require.NoError(t, err)
	assert.False(t, h.HasGlobalContext())
}

func TestFromConfig_ResolvesThroughManager(t *testing.T) {
	t.Parallel()

	keypair, pub := writeKeypair(t)
	cfg := &config.Config{
		RPC: config.RPCConfig{Solana: "http://127.0.0.1:1"},
		Host: config.HostConfig{Globals: map[string]config.GlobalConfig{
			"ethereum": {Kind: config.KindEthereum, URL: newNode(t), Flags: chains.WalletFlags{IsMetaMask: true}},
			"phantom":  {Kind: config.KindSolana, Keypair: keypair, Flags: chains.WalletFlags{IsPhantom: true}},
		}},
	}

	lggr := logger.Test(t)
	h, err := hostenv.FromConfig(t.Context(), cfg, lggr)
	require.NoError(t, err)
	t.Cleanup(h.Close)

	m := provider.NewManager(&provider.WalletConfig{Priority: []string{"metamask", "phantom"}},
		provider.WithProbe(h), provider.WithLogger(lggr))

	p, err := m.GetOrDetectProvider(t.Context(), chains.Ethereum)
	require.NoError(t, err)
	eth, ok := p.(chains.EthereumProvider)
	require.True(t, ok)
	accts, err := eth.Accounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{nodeAccount}, accts)

	p, err = m.GetOrDetectProvider(t.Context(), chains.Solana)
	require.NoError(t, err)
	sol, ok := p.(chains.SolanaProvider)
	require.True(t, ok)
	assert.Equal(t, pub, sol.PublicKey())

	wallet, ok := h.Phantom().(*solchain.KeypairWallet)
	require.True(t, ok)
	assert.True(t, wallet.Connected())

	require.NoError(t, m.Disconnect(t.Context()))
	assert.False(t, wallet.Connected())
}

func TestFromConfig_Web3(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Host: config.HostConfig{Globals: map[string]config.GlobalConfig{
		"web3": {Kind: config.KindEthereum, URL: newNode(t)},
	}}}

	h, err := hostenv.FromConfig(t.Context(), cfg, logger.Test(t))
	require.NoError(t, err)
	t.Cleanup(h.Close)

	web3 := h.LegacyWeb3()
	require.NotNil(t, web3)
	_, ok := web3.CurrentProvider().(*ethchain.RPCWallet)
	assert.True(t, ok)
	assert.Nil(t, h.Ethereum())
}

func TestFromConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := hostenv.FromConfig(t.Context(), &config.Config{Host: config.HostConfig{Globals: map[string]config.GlobalConfig{
		"backpack": {Kind: config.KindSolana, Keypair: "id.json"},
	}}}, logger.Test(t))
	require.ErrorContains(t, err, `unknown host global "backpack"`)

	_, err = hostenv.FromConfig(t.Context(), &config.Config{Host: config.HostConfig{Globals: map[string]config.GlobalConfig{
		"solflare": {Kind: config.KindSolana, Keypair: filepath.Join(t.TempDir(), "missing.json")},
	}}}, logger.Test(t))
	require.ErrorContains(t, err, "host global solflare")
}
