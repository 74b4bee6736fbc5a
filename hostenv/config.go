package hostenv

import (
	"context"
	"fmt"
	"slices"

	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/chains/solana"
	"github.com/chinmay1088/vaultkit/config"
	"github.com/chinmay1088/vaultkit/pkg/logger"
)

// FromConfig builds a host from cfg.Host.Globals: ethereum globals become RPC-backed wallets,
// solana globals keypair-backed wallets using cfg.RPC.Solana. A wallet configured under web3 is
// installed as its current provider. Without configured globals the host is headless.
func FromConfig(ctx context.Context, cfg *config.Config, lggr logger.Logger) (*Host, error) {
	if len(cfg.Host.Globals) == 0 {
		lggr.Debugw("no host globals configured, running headless")
		return Headless(), nil
	}

	h := New()
	var solClient *solana.Client

	names := make([]string, 0, len(cfg.Host.Globals))
	for name := range cfg.Host.Globals {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		g := cfg.Host.Globals[name]
		global, ok := CanonicalName(name)
		if !ok {
			h.Close()
			return nil, fmt.Errorf("unknown host global %q", name)
		}

		var v any
		switch g.Kind {
		case config.KindEthereum:
			w, err := ethereum.DialRPCWallet(ctx, g.URL, g.Flags)
			if err != nil {
				h.Close()
				return nil, fmt.Errorf("host global %s: %w", global, err)
			}
			v = w
			if global == GlobalWeb3 {
				v = Web3{Provider: w}
			}
		case config.KindSolana:
			if solClient == nil {
				solClient = solana.NewClient(cfg.RPC.Solana)
			}
			w, err := solana.LoadKeypairWallet(g.Keypair, solClient, g.Flags)
			if err != nil {
				h.Close()
				return nil, fmt.Errorf("host global %s: %w", global, err)
			}
			v = w
		default:
			h.Close()
			return nil, fmt.Errorf("host global %s: unknown kind %q", global, g.Kind)
		}

		h.Install(global, v)
		lggr.Infow("host global installed", "global", global, "kind", g.Kind, "flags", g.Flags)
	}

	return h, nil
}
