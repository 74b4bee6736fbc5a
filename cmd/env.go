package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/chinmay1088/vaultkit/chains"
	"github.com/chinmay1088/vaultkit/chains/bitcoin"
	"github.com/chinmay1088/vaultkit/chains/ethereum"
	"github.com/chinmay1088/vaultkit/chains/solana"
	"github.com/chinmay1088/vaultkit/config"
	"github.com/chinmay1088/vaultkit/hostenv"
	"github.com/chinmay1088/vaultkit/pkg/logger"
	"github.com/chinmay1088/vaultkit/provider"
	"github.com/chinmay1088/vaultkit/wallet"
)

// environment is what every command runs against, set up before the command runs.
type environment struct {
	cfg     *config.Config
	cfgPath string
	lggr    logger.Logger
	keyring *wallet.Keyring
	host    *hostenv.Host
	closers []func()
}

var env environment

func setupEnv(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	lggr := logger.NewConsole(lvl)

	env = environment{
		cfg:     cfg,
		cfgPath: path,
		lggr:    lggr,
		keyring: wallet.NewKeyring(cfg.DataDir, cfg.Network),
	}
	lggr.Debugw("environment ready", "command", cmd.Name(), "config", path, "network", cfg.Network)

	return nil
}

// teardownEnv releases what the command opened. Cobra skips post-run hooks when RunE fails, so
// it runs from ExecuteContext instead.
func teardownEnv() {
	for i := len(env.closers) - 1; i >= 0; i-- {
		env.closers[i]()
	}
	env.closers = nil
	if env.host != nil {
		env.host.Close()
		env.host = nil
	}
	if env.lggr != nil {
		_ = env.lggr.Sync()
	}
}

// clients are the network clients a command needs; unused ones stay nil.
type clients struct {
	eth *ethereum.MultiClient
	sol *solana.Client
	btc *bitcoin.EsploraClient
}

// dial connects the clients for ts.
func (e *environment) dial(ctx context.Context, ts ...chains.BlockchainType) (clients, error) {
	var c clients
	for _, t := range ts {
		switch t {
		case chains.Ethereum:
			mc, err := ethereum.NewMultiClient(ctx, e.lggr, e.cfg.Network, e.cfg.RPC.Ethereum)
			if err != nil {
				return c, err
			}
			e.closers = append(e.closers, mc.Close)
			c.eth = mc
		case chains.Solana:
			c.sol = solana.NewClient(e.cfg.RPC.Solana)
		case chains.Bitcoin:
			c.btc = bitcoin.NewEsploraClient(e.cfg.RPC.Bitcoin)
		}
	}

	return c, nil
}

func (c clients) backends() wallet.Backends {
	var b wallet.Backends
	if c.eth != nil {
		b.Ethereum = c.eth
	}
	if c.btc != nil {
		b.Bitcoin = c.btc
	}
	b.Solana = c.sol

	return b
}

// manager builds a provider Manager over the configured host. Keyring providers are registered
// first when --keyring is set and the keyring is unlocked.
func (e *environment) manager(ctx context.Context, c clients) (*provider.Manager, error) {
	host, err := hostenv.FromConfig(ctx, e.cfg, e.lggr)
	if err != nil {
		return nil, err
	}
	e.host = host

	m := provider.NewManager(e.cfg.WalletConfig(), provider.WithProbe(host), provider.WithLogger(e.lggr))
	if !useKeyring {
		return m, nil
	}

	switch err := e.keyring.RegisterWith(m, c.backends()); {
	case errors.Is(err, wallet.ErrLocked):
		e.lggr.Warnw("keyring is locked, resolving from the host only")
	case err != nil:
		return nil, err
	}

	return m, nil
}

// chainsFromArgs parses an optional chain argument; no argument means every supported chain.
func chainsFromArgs(args []string) ([]chains.BlockchainType, error) {
	if len(args) == 0 {
		return chains.Supported(), nil
	}
	t, err := chains.ParseBlockchainType(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w. Supported chains: eth, sol, btc", err)
	}

	return []chains.BlockchainType{t}, nil
}

// providerAddress returns the default account of p in its chain's display format.
func providerAddress(ctx context.Context, p chains.BlockchainProvider) (string, error) {
	switch p := p.(type) {
	case chains.EthereumProvider:
		accts, err := p.Accounts(ctx)
		if err != nil {
			return "", err
		}
		if len(accts) == 0 {
			return "", ethereum.ErrNoAccounts
		}

		return accts[0].Hex(), nil
	case chains.SolanaProvider:
		return p.PublicKey().String(), nil
	case chains.BitcoinProvider:
		return p.Address().EncodeAddress(), nil
	default:
		return "", fmt.Errorf("%w: %T", provider.ErrInvalidProvider, p)
	}
}
