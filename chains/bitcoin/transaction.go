package bitcoin

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"
)

const (
	// BTCDecimals is the number of decimals between satoshis and BTC.
	BTCDecimals = 8
	// DustLimit is the smallest P2WPKH output relayed by default policy.
	DustLimit = 294

	txVersion = 2

	// Virtual sizes of P2WPKH spends.
	overheadVSize = 11
	inputVSize    = 68
	outputVSize   = 31
)

var (
	ErrInvalidAddress    = errors.New("invalid Bitcoin address")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// UTXO is an unspent output owned by the wallet.
type UTXO struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Value    int64  `json:"value"`
	PkScript []byte `json:"-"`
}

// OutPoint returns the UTXO's outpoint.
func (u UTXO) OutPoint() (*wire.OutPoint, error) {
	hash, err := chainhash.NewHashFromStr(u.TxID)
	if err != nil {
		return nil, fmt.Errorf("invalid previous transaction hash: %w", err)
	}

	return wire.NewOutPoint(hash, u.Vout), nil
}

// Params returns the chain parameters for a network name. Anything other than mainnet is testnet.
func Params(network string) *chaincfg.Params {
	switch network {
	case "mainnet", "":
		return &chaincfg.MainNetParams
	case "regtest":
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.TestNet3Params
	}
}

// ParseAddress decodes address and checks it belongs to params.
func ParseAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if !addr.IsForNet(params) {
		return nil, fmt.Errorf("%w: %s is not a %s address", ErrInvalidAddress, address, params.Name)
	}

	return addr, nil
}

// BTCToSatoshis converts a BTC amount such as "0.001" to satoshis.
func BTCToSatoshis(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	sats := d.Shift(BTCDecimals)
	if !sats.Equal(sats.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, BTCDecimals)
	}
	if sats.GreaterThan(decimal.NewFromInt(btcutil.MaxSatoshi)) {
		return 0, fmt.Errorf("%w: exceeds the total supply", ErrInvalidAmount)
	}

	return sats.IntPart(), nil
}

// SatoshisToBTC formats satoshis as a BTC decimal string.
func SatoshisToBTC(sats int64) string {
	return decimal.New(sats, -BTCDecimals).String()
}

// FormatBalance renders satoshis as "<amount> BTC".
func FormatBalance(sats int64) string {
	return SatoshisToBTC(sats) + " BTC"
}

// EstimateFee returns the fee for a P2WPKH transaction of the given shape at feeRate sat/vB.
func EstimateFee(inputs, outputs int, feeRate int64) int64 {
	return int64(overheadVSize+inputs*inputVSize+outputs*outputVSize) * feeRate
}

// Transfer is an unsigned transaction together with the outputs it spends.
type Transfer struct {
	Tx       *wire.MsgTx
	PrevOuts []*wire.TxOut
	Fee      int64
}

// NewTransfer pays amount to `to` from utxos, largest first, returning change above the dust
// limit to change.
func NewTransfer(utxos []UTXO, to, change btcutil.Address, amount, feeRate int64) (*Transfer, error) {
	if amount < DustLimit {
		return nil, fmt.Errorf("%w: %d sat is below the dust limit", ErrInvalidAmount, amount)
	}
	toScript, err := txscript.PayToAddrScript(to)
	if err != nil {
		return nil, fmt.Errorf("failed to create output script: %w", err)
	}
	changeScript, err := txscript.PayToAddrScript(change)
	if err != nil {
		return nil, fmt.Errorf("failed to create change script: %w", err)
	}

	sorted := append([]UTXO(nil), utxos...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	tx := wire.NewMsgTx(txVersion)
	prevOuts := make([]*wire.TxOut, 0, len(sorted))
	var total int64
	for _, u := range sorted {
		op, err := u.OutPoint()
		if err != nil {
			return nil, err
		}
		tx.AddTxIn(wire.NewTxIn(op, nil, nil))
		prevOuts = append(prevOuts, wire.NewTxOut(u.Value, changeScriptFor(u, changeScript)))
		total += u.Value

		if total >= amount+EstimateFee(len(tx.TxIn), 2, feeRate) {
			break
		}
	}

	fee := EstimateFee(len(tx.TxIn), 2, feeRate)
	if total < amount+fee {
		return nil, fmt.Errorf("%w: have %d sat, need %d sat", ErrInsufficientFunds, total, amount+fee)
	}

	tx.AddTxOut(wire.NewTxOut(amount, toScript))
	if rest := total - amount - fee; rest >= DustLimit {
		tx.AddTxOut(wire.NewTxOut(rest, changeScript))
	} else {
		fee = total - amount
	}

	return &Transfer{Tx: tx, PrevOuts: prevOuts, Fee: fee}, nil
}

// changeScriptFor returns the UTXO's own script, falling back to the wallet script when the
// source did not report one.
func changeScriptFor(u UTXO, walletScript []byte) []byte {
	if len(u.PkScript) > 0 {
		return u.PkScript
	}

	return walletScript
}

// Serialize encodes tx as hex.
func Serialize(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return hex.EncodeToString(buf.Bytes()), nil
}
