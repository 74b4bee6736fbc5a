package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, NetworkMainnet, cfg.Network)
	assert.False(t, cfg.IsTestnet())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultDataDir(), cfg.DataDir)
	assert.Equal(t, []string{MainnetEthereumRPC}, cfg.RPC.Ethereum)
	assert.Equal(t, MainnetSolanaRPC, cfg.RPC.Solana)
	assert.Equal(t, bitcoin.MainnetEsploraURL, cfg.RPC.Bitcoin)
	assert.Empty(t, cfg.Host.Globals)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
network: testnet
log_level: debug
data_dir: /tmp/vaultkit
wallet:
  auto_connect_wallets: [ethereum, sol]
  priority: [phantom, metamask]
rpc:
  ethereum:
    - https://rpc.one.example
    - https://rpc.two.example
host:
  globals:
    ethereum:
      kind: ethereum
      url: http://127.0.0.1:8545
      flags:
        is_metamask: true
    HiroWalletProvider:
      kind: solana
      keypair: /tmp/id.json
      flags:
        is_phantom: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsTestnet())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/vaultkit", cfg.DataDir)
	assert.Equal(t, []string{"https://rpc.one.example", "https://rpc.two.example"}, cfg.RPC.Ethereum)
	assert.Equal(t, TestnetSolanaRPC, cfg.RPC.Solana)
	assert.Equal(t, bitcoin.TestnetEsploraURL, cfg.RPC.Bitcoin)
	assert.Equal(t, []string{"phantom", "metamask"}, cfg.Wallet.Priority)

	require.Len(t, cfg.Host.Globals, 2)
	eth := cfg.Host.Globals["ethereum"]
	assert.Equal(t, KindEthereum, eth.Kind)
	assert.True(t, eth.Flags.IsMetaMask)
	hiro := cfg.Host.Globals["hirowalletprovider"]
	assert.Equal(t, "/tmp/id.json", hiro.Keypair)
	assert.True(t, hiro.Flags.IsPhantom)

	wc := cfg.WalletConfig()
	assert.Equal(t, []chains.BlockchainType{chains.Ethereum, chains.Solana}, wc.AutoConnectWallets)
	assert.Equal(t, []string{"phantom", "metamask"}, wc.Priority)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VAULTKIT_RPC_SOLANA", "https://solana.example")
	t.Setenv("VAULTKIT_WALLET_PRIORITY", "solflare,phantom")
	t.Setenv("VAULTKIT_LOG_LEVEL", "warn")

	path := writeConfig(t, "rpc:\n  solana: https://file.example\nlog_level: error\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://solana.example", cfg.RPC.Solana)
	assert.Equal(t, []string{"solflare", "phantom"}, cfg.Wallet.Priority)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	// Register restoration with t.Setenv, then unset so the .env value is applied.
	t.Setenv("VAULTKIT_NETWORK", "")
	require.NoError(t, os.Unsetenv("VAULTKIT_NETWORK"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VAULTKIT_NETWORK=testnet\n"), 0o600))

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NetworkTestnet, cfg.Network)
	assert.Equal(t, []string{TestnetEthereumRPC}, cfg.RPC.Ethereum)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown network",
			body:    "network: regtest\n",
			wantErr: "Network",
		},
		{
			name:    "bad log level",
			body:    "log_level: loud\n",
			wantErr: "log_level",
		},
		{
			name:    "bad rpc url",
			body:    "rpc:\n  ethereum: [not a url]\n",
			wantErr: "Ethereum",
		},
		{
			name:    "ethereum global without url",
			body:    "host:\n  globals:\n    ethereum:\n      kind: ethereum\n",
			wantErr: "ethereum wallets need a url",
		},
		{
			name:    "solana global without keypair",
			body:    "host:\n  globals:\n    phantom:\n      kind: solana\n",
			wantErr: "solana wallets need a keypair file",
		},
		{
			name:    "unknown global kind",
			body:    "host:\n  globals:\n    hiro:\n      kind: stacks\n",
			wantErr: "Kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.body))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWalletConfig_KeepsUnknownTypes(t *testing.T) {
	t.Parallel()

	cfg := &Config{Wallet: WalletSettings{AutoConnectWallets: []string{"ETH", " Cosmos ", "btc"}}}

	wc := cfg.WalletConfig()
	assert.Equal(t, []chains.BlockchainType{chains.Ethereum, "cosmos", chains.Bitcoin}, wc.AutoConnectWallets)
	assert.Nil(t, wc.Priority)
}

func TestSetNetwork(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SetNetwork(path, "TESTNET"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsTestnet())

	path = writeConfig(t, "network: testnet\nwallet:\n  priority: [phantom]\n")
	require.NoError(t, SetNetwork(path, NetworkMainnet))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "mainnet", doc["network"])
	assert.Equal(t, map[string]any{"priority": []any{"phantom"}}, doc["wallet"])

	require.ErrorContains(t, SetNetwork(path, "regtest"), "invalid network")
}
