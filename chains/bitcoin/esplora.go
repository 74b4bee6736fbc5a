package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	MainnetEsploraURL = "https://mempool.space/api"
	TestnetEsploraURL = "https://mempool.space/testnet/api"

	defaultFeeRate = 10
)

var _ Broadcaster = (*EsploraClient)(nil)

// EsploraClient talks to an Esplora compatible REST API such as mempool.space or blockstream.info.
type EsploraClient struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
}

// NewEsploraClient returns a client for the API rooted at baseURL.
func NewEsploraClient(baseURL string) *EsploraClient {
	return &EsploraClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		delay:      500 * time.Millisecond,
	}
}

// EsploraURL returns the default API for a network name.
func EsploraURL(network string) string {
	if network == "mainnet" || network == "" {
		return MainnetEsploraURL
	}

	return TestnetEsploraURL
}

// UTXOs lists the unspent outputs of address.
func (c *EsploraClient) UTXOs(ctx context.Context, address btcutil.Address) ([]UTXO, error) {
	var items []struct {
		TxID  string `json:"txid"`
		Vout  uint32 `json:"vout"`
		Value int64  `json:"value"`
	}
	if err := c.getJSON(ctx, "/address/"+address.EncodeAddress()+"/utxo", &items); err != nil {
		return nil, fmt.Errorf("failed to fetch UTXOs: %w", err)
	}

	utxos := make([]UTXO, 0, len(items))
	for _, it := range items {
		utxos = append(utxos, UTXO{TxID: it.TxID, Vout: it.Vout, Value: it.Value})
	}

	return utxos, nil
}

// Balance returns the confirmed plus mempool balance of address in satoshis.
func (c *EsploraClient) Balance(ctx context.Context, address btcutil.Address) (int64, error) {
	type stats struct {
		Funded int64 `json:"funded_txo_sum"`
		Spent  int64 `json:"spent_txo_sum"`
	}
	var res struct {
		Chain   stats `json:"chain_stats"`
		Mempool stats `json:"mempool_stats"`
	}
	if err := c.getJSON(ctx, "/address/"+address.EncodeAddress(), &res); err != nil {
		return 0, fmt.Errorf("failed to fetch balance: %w", err)
	}

	return res.Chain.Funded - res.Chain.Spent + res.Mempool.Funded - res.Mempool.Spent, nil
}

// FeeRate returns the sat/vB rate estimated to confirm within target blocks, rounded up. It falls
// back to a fixed rate when the API has no estimate for that target.
func (c *EsploraClient) FeeRate(ctx context.Context, target int) (int64, error) {
	var estimates map[string]float64
	if err := c.getJSON(ctx, "/fee-estimates", &estimates); err != nil {
		return 0, fmt.Errorf("failed to fetch fee estimates: %w", err)
	}

	rate, ok := estimates[strconv.Itoa(target)]
	if !ok || rate <= 0 {
		return defaultFeeRate, nil
	}

	return int64(math.Ceil(rate)), nil
}

// Broadcast submits tx and returns its ID.
func (c *EsploraClient) Broadcast(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error) {
	raw, err := Serialize(tx)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, "/tx", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to broadcast transaction: %w", err)
	}

	hash, err := chainhash.NewHashFromStr(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("unexpected broadcast response %q: %w", body, err)
	}

	return hash, nil
}

func (c *EsploraClient) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// do performs a request, retrying network errors and 5xx responses. 4xx responses are final.
func (c *EsploraClient) do(ctx context.Context, method, path, payload string) ([]byte, error) {
	var body []byte
	err := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(payload))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		if payload != "" {
			req.Header.Set("Content-Type", "text/plain")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
		case resp.StatusCode >= 400:
			return retry.Unrecoverable(fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body))))
		}

		return nil
	},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
	)

	return body, err
}
