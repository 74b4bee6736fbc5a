package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	solchain "github.com/chinmay1088/vaultkit/chains/solana"
	"github.com/chinmay1088/vaultkit/config"
	"github.com/chinmay1088/vaultkit/provider"
)

func TestChainsFromArgs(t *testing.T) {
	t.Parallel()

	all, err := chainsFromArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, chains.Supported(), all)

	ts, err := chainsFromArgs([]string{"sol"})
	require.NoError(t, err)
	assert.Equal(t, []chains.BlockchainType{chains.Solana}, ts)

	_, err = chainsFromArgs([]string{"doge"})
	require.ErrorIs(t, err, chains.ErrUnknownBlockchain)
	assert.Contains(t, err.Error(), "Supported chains")
}

func TestProviderAddress(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	ethKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr, err := providerAddress(ctx, ethereum.NewKeyedProvider(ethKey, nil))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(ethKey.PublicKey).Hex(), addr)

	solKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	addr, err = providerAddress(ctx, solchain.NewKeypairProvider(solKey, nil))
	require.NoError(t, err)
	assert.Equal(t, solKey.PublicKey().String(), addr)

	btcKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	bp, err := bitcoin.NewKeyProvider(btcKey, bitcoin.Params(config.NetworkTestnet), nil)
	require.NoError(t, err)
	addr, err = providerAddress(ctx, bp)
	require.NoError(t, err)
	assert.Equal(t, bp.Address().EncodeAddress(), addr)
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "network: mainnet\nlog_level: error\ndata_dir: " + filepath.Join(dir, "data") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := ExecuteContext(t.Context())

	return out.String(), err
}

// The root command and its flags are package globals, so these tests do not run in parallel.

func TestDetectHeadlessBitcoin(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "--config", path, "--keyring=false", "detect", "btc")
	require.ErrorIs(t, err, provider.ErrNoProvider)
	assert.Contains(t, out, "no provider for bitcoin")
	assert.Contains(t, out, "generic:bitcoin")
	assert.Nil(t, env.host, "host is released when the command fails")
	assert.Empty(t, env.closers)
}

func TestTeardownRunsClosersOnFailure(t *testing.T) {
	path := writeConfig(t)

	var closed []string
	detectCmd.PreRun = func(*cobra.Command, []string) {
		env.closers = append(env.closers, func() { closed = append(closed, "first") }, func() { closed = append(closed, "second") })
	}
	t.Cleanup(func() { detectCmd.PreRun = nil })

	_, err := execute(t, "--config", path, "--keyring=false", "detect", "btc")
	require.ErrorIs(t, err, provider.ErrNoProvider)
	assert.Equal(t, []string{"second", "first"}, closed, "closers run in reverse order")
	assert.Empty(t, env.closers)
}

func TestNetworkSwitch(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "--config", path, "network", "testnet")
	require.NoError(t, err)
	assert.Contains(t, out, "Switched to TESTNET")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.NetworkTestnet, cfg.Network)
	assert.True(t, cfg.IsTestnet())

	_, err = execute(t, "--config", path, "network", "devnet")
	require.Error(t, err)
}

func TestWalletsHeadless(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "--config", path, "--keyring=false", "wallets")
	require.NoError(t, err)
	assert.Contains(t, out, "no global context")
	for _, id := range provider.WalletIDs() {
		assert.Contains(t, out, id)
	}
}
