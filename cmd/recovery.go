package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/wallet"
)

var recoveryPhraseCmd = &cobra.Command{
	Use:   "recovery-phrase [show|import]",
	Short: "Manage the recovery phrase",
	Long: `Manage the keyring's recovery phrase (mnemonic).

Commands:
  show    - Display the recovery phrase (requires an unlocked keyring)
  import  - Create the keyring from an existing recovery phrase`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"show", "import"},
	RunE:      runRecoveryPhrase,
}

func runRecoveryPhrase(cmd *cobra.Command, args []string) error {
	switch action := strings.ToLower(args[0]); action {
	case "show":
		return showRecoveryPhrase(cmd)
	case "import":
		return importRecoveryPhrase(cmd)
	default:
		return fmt.Errorf("invalid action: %s. Use 'show' or 'import'", action)
	}
}

func showRecoveryPhrase(cmd *cobra.Command) error {
	if !env.keyring.VaultExists() {
		return wallet.ErrNoVault
	}
	mnemonic, err := env.keyring.Mnemonic()
	if err != nil {
		return fmt.Errorf("%w. Run 'vaultkit unlock' first", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔐 Recovery Phrase:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "   %s\n", color.CyanString(mnemonic))
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.YellowString("⚠️  Keep this phrase private. Anyone with it can access your funds."))

	return nil
}

func importRecoveryPhrase(cmd *cobra.Command) error {
	if env.keyring.VaultExists() {
		return wallet.ErrVaultExists
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "📝 Import keyring from recovery phrase")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Enter recovery phrase: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read recovery phrase: %w", err)
	}
	mnemonic := strings.Join(strings.Fields(line), " ")

	password, err := readNewPassword(cmd)
	if err != nil {
		return err
	}

	if err := env.keyring.Import(mnemonic, password); err != nil {
		return fmt.Errorf("failed to import keyring: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✅ Keyring imported and unlocked"))

	return nil
}
