package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/chains/solana"
	"github.com/chinmay1088/vaultkit/provider"
)

// btcConfirmationTarget is the block target used for Bitcoin fee estimation.
const btcConfirmationTarget = 6

var assumeYes bool

var payCmd = &cobra.Command{
	Use:   "pay <chain> <amount> <address>",
	Short: "Send funds with the resolved provider",
	Long: `Build, sign and submit a transfer with the provider resolved for a chain.

Supported chains: eth, sol, btc

Examples:
  vaultkit pay eth 0.1 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  vaultkit pay btc 0.001 bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh
  vaultkit pay sol 1.5 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU`,
	Args: cobra.ExactArgs(3),
	RunE: runPay,
}

func runPay(cmd *cobra.Command, args []string) error {
	ts, err := chainsFromArgs(args[:1])
	if err != nil {
		return err
	}
	t, amount, to := ts[0], args[1], args[2]

	ctx := cmd.Context()
	c, err := env.dial(ctx, t)
	if err != nil {
		return err
	}
	m, err := env.manager(ctx, c)
	if err != nil {
		return err
	}
	p, err := m.GetOrDetectProvider(ctx, t)
	if err != nil {
		return err
	}

	switch p := p.(type) {
	case chains.EthereumProvider:
		return payEthereum(ctx, cmd, c, p, amount, to)
	case chains.SolanaProvider:
		return paySolana(ctx, cmd, c, p, amount, to)
	case chains.BitcoinProvider:
		return payBitcoin(ctx, cmd, c, p, amount, to)
	default:
		return fmt.Errorf("%w: %T", provider.ErrInvalidProvider, p)
	}
}

func payEthereum(ctx context.Context, cmd *cobra.Command, c clients, p chains.EthereumProvider, amount, to string) error {
	toAddr, err := ethereum.ParseAddress(to)
	if err != nil {
		return err
	}
	value, err := ethereum.EtherToWei(amount)
	if err != nil {
		return err
	}
	accts, err := p.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		return ethereum.ErrNoAccounts
	}

	tx, err := ethereum.NewTransferTx(ctx, c.eth, accts[0], toAddr, value)
	if err != nil {
		return err
	}
	if err := ethereum.ValidateTransaction(tx); err != nil {
		return err
	}
	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "💸 Sending %s on %s\n", ethereum.FormatBalance(value), ethereum.ChainName(chainID))
	fmt.Fprintf(out, "   From: %s\n", accts[0].Hex())
	fmt.Fprintf(out, "   To:   %s\n", toAddr.Hex())
	if !confirmTransaction(cmd) {
		fmt.Fprintln(out, "❌ Transaction cancelled")
		return nil
	}

	hash, err := p.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString("✅ Transaction sent:"), hash.Hex())

	return nil
}

func paySolana(ctx context.Context, cmd *cobra.Command, c clients, p chains.SolanaProvider, amount, to string) error {
	toKey, err := solana.ParseAddress(to)
	if err != nil {
		return err
	}
	lamports, err := solana.SOLToLamports(amount)
	if err != nil {
		return err
	}
	blockhash, err := c.sol.LatestBlockhash(ctx)
	if err != nil {
		return err
	}
	tx, err := solana.NewTransferTx(p.PublicKey(), toKey, lamports, blockhash)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "💸 Sending %s\n", solana.FormatBalance(lamports))
	fmt.Fprintf(out, "   From: %s\n", p.PublicKey())
	fmt.Fprintf(out, "   To:   %s\n", toKey)
	if !confirmTransaction(cmd) {
		fmt.Fprintln(out, "❌ Transaction cancelled")
		return nil
	}

	sig, err := p.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString("✅ Transaction sent:"), sig)

	return nil
}

func payBitcoin(ctx context.Context, cmd *cobra.Command, c clients, p chains.BitcoinProvider, amount, to string) error {
	toAddr, err := bitcoin.ParseAddress(to, bitcoin.Params(env.cfg.Network))
	if err != nil {
		return err
	}
	sats, err := bitcoin.BTCToSatoshis(amount)
	if err != nil {
		return err
	}
	from := p.Address()
	utxos, err := c.btc.UTXOs(ctx, from)
	if err != nil {
		return err
	}
	rate, err := c.btc.FeeRate(ctx, btcConfirmationTarget)
	if err != nil {
		return err
	}
	transfer, err := bitcoin.NewTransfer(utxos, toAddr, from, sats, rate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "💸 Sending %s (fee %s)\n", bitcoin.FormatBalance(sats), bitcoin.FormatBalance(transfer.Fee))
	fmt.Fprintf(out, "   From: %s\n", from.EncodeAddress())
	fmt.Fprintf(out, "   To:   %s\n", toAddr.EncodeAddress())
	if !confirmTransaction(cmd) {
		fmt.Fprintln(out, "❌ Transaction cancelled")
		return nil
	}

	signed, err := p.SignTransaction(ctx, transfer.Tx, transfer.PrevOuts)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	hash, err := p.SendTransaction(ctx, signed)
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString("✅ Transaction sent:"), hash)

	return nil
}

func confirmTransaction(cmd *cobra.Command) bool {
	if assumeYes {
		return true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	if env.cfg.IsTestnet() {
		fmt.Fprintln(out, color.YellowString("⚠️ You are on testnet. No real funds will be sent."))
	} else {
		fmt.Fprintln(out, color.RedString("🚨 You are on mainnet. Real funds will be sent to this address."))
	}
	fmt.Fprint(out, "Press y to confirm or n to stop (y/n): ")

	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	response := strings.ToLower(strings.TrimSpace(line))

	return response == "y" || response == "yes"
}

func init() {
	payCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}
