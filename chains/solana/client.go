package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Client wraps the Solana RPC client with retries on transient failures.
type Client struct {
	*solrpc.Client

	Attempts   uint
	Delay      time.Duration
	Commitment solrpc.CommitmentType
}

// NewClient returns a Client for the RPC endpoint at url.
func NewClient(url string) *Client {
	return &Client{
		Client:     solrpc.New(url),
		Attempts:   3,
		Delay:      200 * time.Millisecond,
		Commitment: solrpc.CommitmentConfirmed,
	}
}

func (c *Client) retryOpts(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.Attempts),
		retry.Delay(c.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
}

// LatestBlockhash returns the most recent blockhash at the client's commitment.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := retry.Do(func() error {
		res, err := c.GetLatestBlockhash(ctx, c.Commitment)
		if err != nil {
			return err
		}
		hash = res.Value.Blockhash

		return nil
	}, c.retryOpts(ctx)...)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	return hash, nil
}

// Balance returns the lamport balance of account.
func (c *Client) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := retry.Do(func() error {
		res, err := c.GetBalance(ctx, account, c.Commitment)
		if err != nil {
			return err
		}
		lamports = res.Value

		return nil
	}, c.retryOpts(ctx)...)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return lamports, nil
}

// Send submits a signed transaction. Node side rejections are not retried, except for a blockhash
// the node has not seen yet.
func (c *Client) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := retry.Do(func() error {
		var err error
		sig, err = c.SendTransactionWithOpts(ctx, tx, solrpc.TransactionOpts{PreflightCommitment: c.Commitment})
		if err == nil {
			return nil
		}

		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) && !strings.Contains(rpcErr.Message, "Blockhash not found") {
			return retry.Unrecoverable(err)
		}

		return err
	}, c.retryOpts(ctx)...)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}
