package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/provider"
)

var signCmd = &cobra.Command{
	Use:   "sign <chain> <message>",
	Short: "Sign a message with the resolved provider",
	Long: `Sign a message with the provider resolved for a chain.

Ethereum produces an EIP-191 personal signature (hex), Solana an ed25519
signature (base58) and Bitcoin a compact signed-message signature (base64).

Examples:
  vaultkit sign eth "hello"
  vaultkit sign btc "proof of reserves"`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

func runSign(cmd *cobra.Command, args []string) error {
	ts, err := chainsFromArgs(args[:1])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	m, err := env.manager(ctx, clients{})
	if err != nil {
		return err
	}
	p, err := m.GetOrDetectProvider(ctx, ts[0])
	if err != nil {
		return err
	}

	msg := []byte(args[1])
	var sig string
	switch p := p.(type) {
	case chains.EthereumProvider:
		accts, err := p.Accounts(ctx)
		if err != nil {
			return err
		}
		if len(accts) == 0 {
			return ethereum.ErrNoAccounts
		}
		raw, err := p.SignMessage(ctx, accts[0], msg)
		if err != nil {
			return fmt.Errorf("failed to sign message: %w", err)
		}
		sig = hexutil.Encode(raw)
	case chains.SolanaProvider:
		s, err := p.SignMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("failed to sign message: %w", err)
		}
		sig = s.String()
	case chains.BitcoinProvider:
		raw, err := p.SignMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("failed to sign message: %w", err)
		}
		sig = base64.StdEncoding.EncodeToString(raw)
	default:
		return fmt.Errorf("%w: %T", provider.ErrInvalidProvider, p)
	}

	fmt.Fprintln(cmd.OutOrStdout(), sig)

	return nil
}
