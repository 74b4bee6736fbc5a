package provider

import (
	"slices"

	"github.com/chinmay1088/vaultkit/chains"
)

// WalletConfig holds the user's wallet preferences. It is copied on construction and never
// mutated by the Manager.
type WalletConfig struct {
	// AutoConnectWallets lists the blockchain types to prepare at construction. Nothing is
	// connected eagerly; unknown types only produce a warning.
	AutoConnectWallets []chains.BlockchainType `yaml:"auto_connect_wallets" mapstructure:"auto_connect_wallets"`
	// Priority lists wallet ids, tried in order before generic detection.
	Priority []string `yaml:"priority" mapstructure:"priority"`
}

func (c WalletConfig) clone() WalletConfig {
	return WalletConfig{
		AutoConnectWallets: slices.Clone(c.AutoConnectWallets),
		Priority:           slices.Clone(c.Priority),
	}
}
