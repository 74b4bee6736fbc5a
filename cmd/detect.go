package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/provider"
)

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List known wallet ids and whether the host provides them",
	Long: `List the wallet ids accepted in wallet.priority and, for each, whether the
configured host injects it and which capability flags it advertises.`,
	Args: cobra.NoArgs,
	RunE: runWallets,
}

var detectCmd = &cobra.Command{
	Use:   "detect <chain>",
	Short: "Resolve the provider for a chain",
	Long: `Resolve the provider for a chain the way every other command does and show
where it came from. When nothing can serve the chain, every rejected candidate
is listed with its reason.

Examples:
  vaultkit detect eth
  vaultkit detect sol --keyring=false`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func runWallets(cmd *cobra.Command, _ []string) error {
	m, err := env.manager(cmd.Context(), clients{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	probe := m.Probe()
	if !probe.HasGlobalContext() {
		fmt.Fprintln(out, color.YellowString("Host has no global context: no injected wallets (configure host.globals)"))
	}

	for _, id := range provider.WalletIDs() {
		w := provider.LookupWallet(probe, id)
		if w == nil {
			fmt.Fprintf(out, "  %-10s %s\n", id, color.HiBlackString("not present"))
			continue
		}
		f := w.Flags()
		fmt.Fprintf(out, "  %-10s %s ethereum=%t solana=%t\n", id, color.GreenString("present"),
			f.EthereumWallet(), f.SolanaWallet())
	}

	cfg := m.Config()
	if len(cfg.Priority) > 0 {
		fmt.Fprintf(out, "\nPriority: %v\n", cfg.Priority)
	}

	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	ts, err := chainsFromArgs(args)
	if err != nil {
		return err
	}
	t := ts[0]

	m, err := env.manager(cmd.Context(), clients{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p, err := withSpinner(cmd, fmt.Sprintf("[cyan]resolving %s provider[reset]", t), func() (chains.BlockchainProvider, error) {
		return m.GetOrDetectProvider(cmd.Context(), t)
	})

	var npe *provider.NoProviderError
	if errors.As(err, &npe) {
		fmt.Fprintf(out, "%s no provider for %s\n", color.RedString("✗"), t)
		for _, a := range npe.Attempts {
			fmt.Fprintf(out, "  %-22s %s\n", a.Source, color.YellowString(a.Err.Error()))
		}

		return provider.ErrNoProvider
	}
	if err != nil {
		return err
	}

	addr, err := providerAddress(cmd.Context(), p)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s provider %T\n", color.GreenString("✓"), t, p)
	fmt.Fprintf(out, "  address: %s\n", addr)

	return nil
}

// withSpinner runs fn while showing an indeterminate spinner on stderr.
func withSpinner[T any](cmd *cobra.Command, desc string, fn func() (T, error)) (T, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)

	var (
		v    T
		err  error
		done = make(chan struct{})
	)
	go func() {
		defer close(done)
		v, err = fn()
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			_ = bar.Finish()
			return v, err
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}
