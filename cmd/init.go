package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chinmay1088/vaultkit/wallet"
)

const minPasswordLen = 8

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new keyring",
	Long: `Initialize a new keyring with a secure recovery phrase.

This command will:
  - Generate a new 24-word recovery phrase
  - Seal it in an encrypted vault under the data directory
  - Unlock the keyring for a session`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	if env.keyring.VaultExists() {
		return fmt.Errorf("%w: remove %s/wallet.vault to create a new one", wallet.ErrVaultExists, env.cfg.DataDir)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🚀 Initializing vaultkit keyring")
	fmt.Fprintln(out)

	password, err := readNewPassword(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Generating keyring...")
	mnemonic, err := env.keyring.Initialize(password)
	if err != nil {
		return fmt.Errorf("failed to initialize keyring: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✅ Keyring initialized successfully!"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "🔐 Recovery Phrase (24 words):")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "   %s\n", color.CyanString(mnemonic))
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.YellowString("⚠️  IMPORTANT:"))
	fmt.Fprintln(out, "   - Write down this recovery phrase and store it securely")
	fmt.Fprintln(out, "   - Anyone with this phrase can access your funds")
	fmt.Fprintln(out, "   - This is the only way to recover your keyring")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "🔑 Next steps:")
	fmt.Fprintln(out, "   - Run 'vaultkit address' to see your addresses")
	fmt.Fprintln(out, "   - Run 'vaultkit wallets' to see the wallets of your host")

	return nil
}

// readPassword prompts for a password without echoing it.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

func readNewPassword(cmd *cobra.Command) (string, error) {
	password, err := readPassword(cmd, "Enter a password for your keyring: ")
	if err != nil {
		return "", err
	}
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}

	confirm, err := readPassword(cmd, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}
