package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	configPath string
	verbose    bool
	useKeyring bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vaultkit",
	Short: "Resolve and use wallet providers for Ethereum, Solana and Bitcoin",
	Long: `vaultkit resolves a signing provider per blockchain and uses it to show
addresses, sign messages and send payments.

Providers come from two places:
  • the local keyring (BIP-39 mnemonic in an AES-256-GCM vault)
  • wallets injected by the configured host environment

Resolution order per chain: registered providers, then the wallet ids of
wallet.priority in order, then generic detection of injected wallets.

Examples:
  vaultkit init                     # Create a new keyring
  vaultkit unlock                   # Unlock it for a session
  vaultkit wallets                  # Known wallet ids and host presence
  vaultkit detect sol --keyring=false
  vaultkit address                  # Addresses of every resolved provider
  vaultkit sign eth "hello"         # Sign a message
  vaultkit pay sol 0.5 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU
  vaultkit network testnet          # Switch networks`,
	SilenceUsage:      true,
	PersistentPreRunE: setupEnv,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx. Host wallets and RPC clients opened by the
// command are closed whether it succeeds or fails.
func ExecuteContext(ctx context.Context) error {
	defer teardownEnv()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.vaultkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&useKeyring, "keyring", true, "register keyring providers before resolving")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(recoveryPhraseCmd)
	rootCmd.AddCommand(walletsCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vaultkit v%s\n", version)
	},
}
