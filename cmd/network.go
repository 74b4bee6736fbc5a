package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/config"
)

var networkCmd = &cobra.Command{
	Use:   "network [mainnet|testnet]",
	Short: "Show or change network",
	Long: `Show the current network or switch between mainnet and testnet.

The network is stored in the config file. Keys, sessions and default RPC
endpoints are all per network.

Examples:
  vaultkit network            # Show current network
  vaultkit network testnet    # Switch to testnet`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{config.NetworkMainnet, config.NetworkTestnet},
	RunE:      runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintf(out, "🌐 Current network: %s\n\n", networkLabel())
		fmt.Fprintln(out, "Endpoints:")
		fmt.Fprintf(out, "   - Ethereum: %s\n", strings.Join(env.cfg.RPC.Ethereum, ", "))
		fmt.Fprintf(out, "   - Solana:   %s\n", env.cfg.RPC.Solana)
		fmt.Fprintf(out, "   - Bitcoin:  %s\n", env.cfg.RPC.Bitcoin)
		fmt.Fprintln(out, "💡 Mainnet and testnet addresses are derived separately")

		return nil
	}

	network := strings.ToLower(args[0])
	if network != config.NetworkMainnet && network != config.NetworkTestnet {
		return fmt.Errorf("invalid network: %s. Use 'mainnet' or 'testnet'", network)
	}
	if err := config.SetNetwork(env.cfgPath, network); err != nil {
		return err
	}

	fmt.Fprintf(out, "🌐 Switched to %s network\n", strings.ToUpper(network))
	if network == config.NetworkTestnet {
		fmt.Fprintln(out, color.YellowString("⚠️  Testnet: Ethereum Sepolia, Solana devnet, Bitcoin testnet3"))
	}
	fmt.Fprintln(out, "🔐 Run 'vaultkit unlock' again: sessions are bound to a network")

	return nil
}
