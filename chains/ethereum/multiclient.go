package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	"github.com/chinmay1088/vaultkit/pkg/logger"
)

const (
	DefaultRetryAttempts = 2
	DefaultRetryDelay    = 500 * time.Millisecond
	DefaultRetryTimeout  = 10 * time.Second

	DefaultDialAttempts = 1
	DefaultDialDelay    = 500 * time.Millisecond
	DefaultDialTimeout  = 10 * time.Second

	healthCheckTimeout = 2 * time.Second
)

// RetryConfig bounds how hard the MultiClient tries each endpoint.
type RetryConfig struct {
	Attempts     uint
	Delay        time.Duration
	Timeout      time.Duration
	DialAttempts uint
	DialDelay    time.Duration
	DialTimeout  time.Duration
}

// DefaultRetryConfig returns the retry settings used when none are given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     DefaultRetryAttempts,
		Delay:        DefaultRetryDelay,
		Timeout:      DefaultRetryTimeout,
		DialAttempts: DefaultDialAttempts,
		DialDelay:    DefaultDialDelay,
		DialTimeout:  DefaultDialTimeout,
	}
}

var _ Backend = (*MultiClient)(nil)

// MultiClient is an Ethereum node client that fails over across several RPC endpoints. The
// endpoint that last served a call is promoted to primary.
type MultiClient struct {
	RetryConfig RetryConfig

	lggr    logger.Logger
	network string

	mu      sync.RWMutex
	primary *ethclient.Client
	backups []*ethclient.Client
}

// MultiClientOption configures a MultiClient.
type MultiClientOption func(*MultiClient)

// WithRetryConfig overrides the default retry settings.
func WithRetryConfig(cfg RetryConfig) MultiClientOption {
	return func(mc *MultiClient) {
		mc.RetryConfig = cfg
	}
}

// NewMultiClient dials every url and keeps the ones that pass a health check. network only labels
// log lines.
func NewMultiClient(ctx context.Context, lggr logger.Logger, network string, urls []string, opts ...MultiClientOption) (*MultiClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("no RPC URLs provided, need at least one")
	}

	mc := &MultiClient{
		RetryConfig: DefaultRetryConfig(),
		lggr:        lggr.Named("evm-client"),
		network:     network,
	}
	for _, opt := range opts {
		opt(mc)
	}

	clients := make([]*ethclient.Client, 0, len(urls))
	for i, url := range urls {
		client, err := mc.dialWithRetry(ctx, url)
		if err != nil {
			mc.lggr.Warnw("failed to dial RPC, trying the next one", "index", i, "network", network, "error", err)
			continue
		}
		if err := healthCheck(ctx, client); err != nil {
			mc.lggr.Warnw("RPC health check failed, trying the next one", "index", i, "network", network, "error", err)
			client.Close()

			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no healthy RPC endpoint for %s", network)
	}

	mc.primary = clients[0]
	mc.backups = clients[1:]

	return mc, nil
}

// NewMultiClientFromClients builds a MultiClient over already dialed clients.
func NewMultiClientFromClients(lggr logger.Logger, network string, clients ...*ethclient.Client) (*MultiClient, error) {
	if len(clients) == 0 {
		return nil, errors.New("no clients provided")
	}

	return &MultiClient{
		RetryConfig: DefaultRetryConfig(),
		lggr:        lggr.Named("evm-client"),
		network:     network,
		primary:     clients[0],
		backups:     clients[1:],
	}, nil
}

func (mc *MultiClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := mc.retryWithBackups(ctx, "ChainID", func(ctx context.Context, client *ethclient.Client) error {
		var err error
		id, err = client.ChainID(ctx)

		return err
	})

	return id, err
}

func (mc *MultiClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return mc.retryWithBackups(ctx, "SendTransaction", func(ctx context.Context, client *ethclient.Client) error {
		return client.SendTransaction(ctx, tx)
	})
}

func (mc *MultiClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var nonce uint64
	err := mc.retryWithBackups(ctx, "PendingNonceAt", func(ctx context.Context, client *ethclient.Client) error {
		var err error
		nonce, err = client.PendingNonceAt(ctx, account)

		return err
	})

	return nonce, err
}

func (mc *MultiClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := mc.retryWithBackups(ctx, "SuggestGasPrice", func(ctx context.Context, client *ethclient.Client) error {
		var err error
		price, err = client.SuggestGasPrice(ctx)

		return err
	})

	return price, err
}

func (mc *MultiClient) EstimateGas(ctx context.Context, call geth.CallMsg) (uint64, error) {
	var gas uint64
	err := mc.retryWithBackups(ctx, "EstimateGas", func(ctx context.Context, client *ethclient.Client) error {
		var err error
		gas, err = client.EstimateGas(ctx, call)

		return err
	})

	return gas, err
}

func (mc *MultiClient) BalanceAt(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error) {
	var balance *big.Int
	err := mc.retryWithBackups(ctx, "BalanceAt", func(ctx context.Context, client *ethclient.Client) error {
		var err error
		balance, err = client.BalanceAt(ctx, account, block)

		return err
	})

	return balance, err
}

// Close closes every underlying client.
func (mc *MultiClient) Close() {
	for _, c := range mc.clients() {
		c.Close()
	}
}

func (mc *MultiClient) retryWithBackups(ctx context.Context, op string, fn func(context.Context, *ethclient.Client) error) error {
	var lastErr error
	traceID := uuid.New()

	for idx, client := range mc.clients() {
		retries := 0
		err := retry.Do(func() error {
			callCtx, cancel := ensureTimeout(ctx, mc.RetryConfig.Timeout)
			defer cancel()

			if lastErr = fn(callCtx, client); lastErr != nil {
				mc.lggr.Debugw("rpc call failed", "traceID", traceID, "network", mc.network, "op", op, "client", idx, "err", dataError(lastErr))
				return lastErr
			}
			mc.promote(idx)

			return nil
		},
			retry.Context(ctx),
			retry.Attempts(mc.RetryConfig.Attempts),
			retry.Delay(mc.RetryConfig.Delay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(uint, error) { retries++ }),
		)
		if err == nil {
			if retries > 0 {
				mc.lggr.Infow("rpc call succeeded after retries", "traceID", traceID, "op", op, "client", idx, "retries", retries)
			}

			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		mc.lggr.Warnw("rpc client exhausted, trying next", "traceID", traceID, "network", mc.network, "op", op, "client", idx)
	}

	return fmt.Errorf("%s: all RPC clients failed for %s: %w", op, mc.network, lastErr)
}

func (mc *MultiClient) dialWithRetry(ctx context.Context, url string) (*ethclient.Client, error) {
	var client *ethclient.Client
	err := retry.Do(func() error {
		dialCtx, cancel := context.WithTimeout(ctx, mc.RetryConfig.DialTimeout)
		defer cancel()

		var err error
		client, err = ethclient.DialContext(dialCtx, url)

		return err
	},
		retry.Context(ctx),
		retry.Attempts(mc.RetryConfig.DialAttempts),
		retry.Delay(mc.RetryConfig.DialDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	return client, nil
}

// promote makes the client at idx the primary, moving the ones that failed before it to the back.
func (mc *MultiClient) promote(idx int) {
	if idx == 0 {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if idx > len(mc.backups) {
		return
	}
	next := mc.backups[idx-1]
	reordered := make([]*ethclient.Client, 0, len(mc.backups))
	reordered = append(reordered, mc.backups[idx:]...)
	reordered = append(reordered, mc.backups[:idx-1]...)
	reordered = append(reordered, mc.primary)

	mc.primary = next
	mc.backups = reordered
}

func (mc *MultiClient) clients() []*ethclient.Client {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return append([]*ethclient.Client{mc.primary}, mc.backups...)
}

func healthCheck(ctx context.Context, client *ethclient.Client) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if _, err := client.BlockNumber(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

// ensureTimeout keeps the parent's deadline when it has one and applies timeout otherwise.
func ensureTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, timeout)
}

func dataError(err error) error {
	var d rpc.DataError
	if errors.As(err, &d) {
		return fmt.Errorf("%s: %v", d.Error(), d.ErrorData())
	}

	return err
}
