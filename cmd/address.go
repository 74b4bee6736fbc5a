package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address [chain]",
	Short: "Show the address of the resolved provider",
	Long: `Show the default account of the provider resolved for a chain.
Supported chains: eth, sol, btc

Examples:
  vaultkit address eth     # Show the Ethereum address
  vaultkit address sol     # Show the Solana address
  vaultkit address         # Show every address`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAddress,
}

func runAddress(cmd *cobra.Command, args []string) error {
	ts, err := chainsFromArgs(args)
	if err != nil {
		return err
	}
	m, err := env.manager(cmd.Context(), clients{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🌐 Network: %s\n\n", networkLabel())

	for _, t := range ts {
		p, err := m.GetOrDetectProvider(cmd.Context(), t)
		if err != nil {
			if len(ts) == 1 {
				return err
			}
			fmt.Fprintf(out, "%-9s %s\n", t, color.RedString("unavailable"))
			continue
		}
		addr, err := providerAddress(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("failed to get %s address: %w", t, err)
		}
		fmt.Fprintf(out, "%-9s %s\n", t, addr)
	}

	return nil
}

func networkLabel() string {
	if env.cfg.IsTestnet() {
		return color.YellowString("Testnet")
	}

	return color.GreenString("Mainnet")
}
