// Package config loads vaultkit settings from a YAML file, the environment and an optional .env
// file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
	"github.com/chinmay1088/vaultkit/pkg/logger"
	"github.com/chinmay1088/vaultkit/provider"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// RPC endpoints used when rpc.* is not configured.
const (
	MainnetEthereumRPC = "https://ethereum-rpc.publicnode.com"
	MainnetSolanaRPC   = "https://api.mainnet-beta.solana.com"

	TestnetEthereumRPC = "https://ethereum-sepolia.publicnode.com"
	TestnetSolanaRPC   = "https://api.devnet.solana.com"
)

// EnvPrefix prefixes every environment override, e.g. VAULTKIT_RPC_SOLANA.
const EnvPrefix = "VAULTKIT"

// Kinds of configured host globals.
const (
	KindEthereum = "ethereum"
	KindSolana   = "solana"
)

// Config is the full vaultkit configuration.
type Config struct {
	Network  string         `mapstructure:"network" yaml:"network" validate:"required,oneof=mainnet testnet"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	DataDir  string         `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	Wallet   WalletSettings `mapstructure:"wallet" yaml:"wallet"`
	RPC      RPCConfig      `mapstructure:"rpc" yaml:"rpc"`
	Host     HostConfig     `mapstructure:"host" yaml:"host,omitempty"`
}

// WalletSettings mirrors provider.WalletConfig in its file form.
type WalletSettings struct {
	AutoConnectWallets []string `mapstructure:"auto_connect_wallets" yaml:"auto_connect_wallets,omitempty" validate:"dive,required"`
	Priority           []string `mapstructure:"priority" yaml:"priority,omitempty" validate:"dive,required"`
}

// RPCConfig holds node endpoints per chain.
type RPCConfig struct {
	// Ethereum lists endpoints, primary first; the rest are backups.
	Ethereum []string `mapstructure:"ethereum" yaml:"ethereum,omitempty" validate:"dive,url"`
	Solana   string   `mapstructure:"solana" yaml:"solana,omitempty" validate:"omitempty,url"`
	// Bitcoin is an Esplora REST API base URL.
	Bitcoin string `mapstructure:"bitcoin" yaml:"bitcoin,omitempty" validate:"omitempty,url"`
}

// HostConfig declares injected wallets for a host environment built from configuration.
type HostConfig struct {
	// Globals maps a global name (ethereum, web3, phantom, ...) to the wallet installed under it.
	// Names are matched case-insensitively.
	Globals map[string]GlobalConfig `mapstructure:"globals" yaml:"globals,omitempty" validate:"dive"`
}

// GlobalConfig defines one injected wallet.
type GlobalConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind" validate:"required,oneof=ethereum solana"`
	// URL is the JSON-RPC node backing an ethereum wallet.
	URL string `mapstructure:"url" yaml:"url,omitempty" validate:"omitempty,url"`
	// Keypair is a solana-keygen keypair file backing a solana wallet.
	Keypair string             `mapstructure:"keypair" yaml:"keypair,omitempty"`
	Flags   chains.WalletFlags `mapstructure:"flags" yaml:"flags"`
}

// envKeys are bound explicitly so environment values reach Unmarshal without a file entry.
var envKeys = []string{
	"wallet.auto_connect_wallets",
	"wallet.priority",
	"rpc.ethereum",
	"rpc.solana",
	"rpc.bitcoin",
}

// DefaultDataDir returns ~/.vaultkit, or .vaultkit when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vaultkit"
	}

	return filepath.Join(home, ".vaultkit")
}

// DefaultPath returns the config file inside the default data directory.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load reads the config file at path, when it exists, then applies environment overrides and
// defaults and validates the result. A .env file next to the config file is loaded first; it
// never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", NetworkMainnet)
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", DefaultDataDir())

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func (c *Config) applyDefaults() {
	c.Network = strings.ToLower(strings.TrimSpace(c.Network))
	if c.Network == "" {
		c.Network = NetworkMainnet
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}

	testnet := c.Network == NetworkTestnet
	if len(c.RPC.Ethereum) == 0 {
		c.RPC.Ethereum = []string{MainnetEthereumRPC}
		if testnet {
			c.RPC.Ethereum = []string{TestnetEthereumRPC}
		}
	}
	if c.RPC.Solana == "" {
		c.RPC.Solana = MainnetSolanaRPC
		if testnet {
			c.RPC.Solana = TestnetSolanaRPC
		}
	}
	if c.RPC.Bitcoin == "" {
		c.RPC.Bitcoin = bitcoin.EsploraURL(c.Network)
	}
}

// Validate runs tag validation, then the checks tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: log_level: %w", err)
	}

	for name, g := range c.Host.Globals {
		switch {
		case g.Kind == KindEthereum && g.URL == "":
			return fmt.Errorf("invalid config: host global %q: ethereum wallets need a url", name)
		case g.Kind == KindSolana && g.Keypair == "":
			return fmt.Errorf("invalid config: host global %q: solana wallets need a keypair file", name)
		}
	}

	return nil
}

// IsTestnet reports whether the testnet endpoints are selected.
func (c *Config) IsTestnet() bool { return c.Network == NetworkTestnet }

// WalletConfig converts the wallet settings for provider.NewManager. Unknown auto-connect
// entries are kept, lowercased, so the Manager can report them.
func (c *Config) WalletConfig() *provider.WalletConfig {
	wc := &provider.WalletConfig{
		Priority: append([]string(nil), c.Wallet.Priority...),
	}
	for _, s := range c.Wallet.AutoConnectWallets {
		t, err := chains.ParseBlockchainType(s)
		if err != nil {
			t = chains.BlockchainType(strings.ToLower(strings.TrimSpace(s)))
		}
		wc.AutoConnectWallets = append(wc.AutoConnectWallets, t)
	}

	return wc
}

// SetNetwork rewrites the network key of the config file at path, creating the file when
// missing. Other keys are kept as written.
func SetNetwork(path, network string) error {
	network = strings.ToLower(strings.TrimSpace(network))
	if network != NetworkMainnet && network != NetworkTestnet {
		return fmt.Errorf("invalid network %q: use %s or %s", network, NetworkMainnet, NetworkTestnet)
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc["network"] = network

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, out, 0o600)
}
