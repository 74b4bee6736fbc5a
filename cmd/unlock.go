package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/wallet"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the keyring for a session",
	Long: `Unlock your keyring for a session.
This command decrypts the vault and starts a session that lasts 30 minutes
or until you run 'vaultkit lock'. Sessions are bound to the current network.

Example:
  vaultkit unlock`,
	Args: cobra.NoArgs,
	RunE: runUnlock,
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := env.keyring.Lock(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "🔒 Keyring locked")

		return nil
	},
}

func runUnlock(cmd *cobra.Command, _ []string) error {
	if !env.keyring.VaultExists() {
		return wallet.ErrNoVault
	}

	out := cmd.OutOrStdout()
	if env.keyring.Unlocked() {
		fmt.Fprintln(out, color.GreenString("✅ Keyring is already unlocked"))
		return nil
	}

	password, err := readPassword(cmd, "Enter your keyring password: ")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Unlocking keyring...")
	if err := env.keyring.Unlock(password); err != nil {
		if errors.Is(err, wallet.ErrInvalidPassword) {
			return err
		}
		return fmt.Errorf("failed to unlock keyring: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✅ Keyring unlocked successfully!"))
	fmt.Fprintln(out, "💡 Use 'vaultkit address [chain]' to see your addresses")

	return nil
}
