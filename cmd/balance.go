package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/chains/solana"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [chain]",
	Short: "Check balances",
	Long: `Check the balance of the resolved provider's account on each chain.

Supported chains: eth, sol, btc

Examples:
  vaultkit balance        # Check all balances
  vaultkit balance eth    # Check the Ethereum balance`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	ts, err := chainsFromArgs(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	c, err := env.dial(ctx, ts...)
	if err != nil {
		return err
	}
	m, err := env.manager(ctx, c)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "💰 Balances")
	fmt.Fprintf(out, "🌐 Network: %s\n\n", networkLabel())

	for _, t := range ts {
		p, err := m.GetOrDetectProvider(ctx, t)
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", t, err)
			continue
		}
		addr, err := providerAddress(ctx, p)
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", t, err)
			continue
		}
		bal, err := balanceOf(ctx, c, t, addr)
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", t, err)
			continue
		}
		fmt.Fprintf(out, "%-9s %s\n", t, color.CyanString(bal))
		fmt.Fprintf(out, "   📍 Address: %s\n", addr)
	}

	return nil
}

func balanceOf(ctx context.Context, c clients, t chains.BlockchainType, addr string) (string, error) {
	switch t {
	case chains.Ethereum:
		a, err := ethereum.ParseAddress(addr)
		if err != nil {
			return "", err
		}
		wei, err := c.eth.BalanceAt(ctx, a, nil)
		if err != nil {
			return "", fmt.Errorf("failed to fetch balance: %w", err)
		}

		return ethereum.FormatBalance(wei), nil
	case chains.Solana:
		pk, err := solana.ParseAddress(addr)
		if err != nil {
			return "", err
		}
		lamports, err := c.sol.Balance(ctx, pk)
		if err != nil {
			return "", fmt.Errorf("failed to fetch balance: %w", err)
		}

		return solana.FormatBalance(lamports), nil
	case chains.Bitcoin:
		a, err := bitcoin.ParseAddress(addr, bitcoin.Params(env.cfg.Network))
		if err != nil {
			return "", err
		}
		sats, err := c.btc.Balance(ctx, a)
		if err != nil {
			return "", fmt.Errorf("failed to fetch balance: %w", err)
		}

		return bitcoin.FormatBalance(sats), nil
	default:
		return "", fmt.Errorf("%w: %s", chains.ErrUnknownBlockchain, t)
	}
}
