package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	chainsel "github.com/smartcontractkit/chain-selectors"
)

const (
	// EtherDecimals is the number of decimals between wei and ether.
	EtherDecimals = 18
	// TransferGasLimit is the gas a plain value transfer consumes.
	TransferGasLimit = 21000
	// FallbackGasLimit is used when estimation fails.
	FallbackGasLimit = 50000
)

var (
	ErrInvalidAddress = errors.New("invalid Ethereum address")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// ParseAddress parses a hex encoded, 0x prefixed address.
func ParseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return common.HexToAddress(address), nil
}

// EtherToWei converts an ether amount such as "0.25" to wei.
func EtherToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	wei := d.Shift(EtherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, EtherDecimals)
	}

	return wei.BigInt(), nil
}

// WeiToEther formats wei as an ether decimal string.
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}

// FormatBalance renders wei as "<amount> ETH".
func FormatBalance(wei *big.Int) string {
	return WeiToEther(wei) + " ETH"
}

// TxBackend is the node access needed to fill in a transfer.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call geth.CallMsg) (uint64, error)
}

// NewTransferTx builds an unsigned legacy value transfer from -> to, filling nonce, gas price and
// gas limit from backend.
func NewTransferTx(ctx context.Context, backend TxBackend, from, to common.Address, value *big.Int) (*types.Transaction, error) {
	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	gasLimit := EstimateGasLimit(ctx, backend, geth.CallMsg{From: from, To: &to, Value: value})

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
	})
	if err := ValidateTransaction(tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// EstimateGasLimit estimates call with a 20% buffer. It never fails: when the node cannot
// estimate, FallbackGasLimit is returned.
func EstimateGasLimit(ctx context.Context, backend TxBackend, call geth.CallMsg) uint64 {
	gas, err := backend.EstimateGas(ctx, call)
	if err != nil || gas == 0 {
		return FallbackGasLimit
	}

	return gas + gas/5
}

// ValidateTransaction performs the sanity checks done before a transaction is handed to a signer.
func ValidateTransaction(tx *types.Transaction) error {
	if tx == nil {
		return errors.New("nil transaction")
	}
	if tx.To() == nil && len(tx.Data()) == 0 {
		return errors.New("contract creation without init code")
	}
	if tx.Value() != nil && tx.Value().Sign() < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidAmount)
	}
	if tx.Gas() < TransferGasLimit {
		return fmt.Errorf("gas limit %d below intrinsic %d", tx.Gas(), TransferGasLimit)
	}

	return nil
}

// ChainName returns the canonical name of an EVM chain ID, or the decimal ID when unknown.
func ChainName(chainID *big.Int) string {
	if chainID == nil {
		return "unknown"
	}
	details, err := chainsel.GetChainDetailsByChainIDAndFamily(chainID.String(), chainsel.FamilyEVM)
	if err != nil || details.ChainName == "" {
		return chainID.String()
	}

	return details.ChainName
}
