package solana

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// SOLDecimals is the number of decimals between lamports and SOL.
const SOLDecimals = 9

var (
	ErrInvalidAddress = errors.New("invalid Solana address")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// ParseAddress parses a base58 public key, pointing at characters base58 does not allow.
func ParseAddress(address string) (solana.PublicKey, error) {
	if i := strings.IndexAny(address, "0OIl"); i >= 0 {
		return solana.PublicKey{}, fmt.Errorf("%w: character %q at position %d is not base58", ErrInvalidAddress, address[i], i)
	}

	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w (%s): %w", ErrInvalidAddress, address, err)
	}

	return pub, nil
}

// ValidateAddress reports whether address is a valid public key.
func ValidateAddress(address string) error {
	_, err := ParseAddress(address)
	return err
}

// ParseBlockhash decodes a base58 blockhash.
func ParseBlockhash(s string) (solana.Hash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash: %w", err)
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.Hash{}, fmt.Errorf("invalid blockhash: got %d bytes, want %d", len(raw), solana.PublicKeyLength)
	}

	return solana.HashFromBytes(raw), nil
}

// SOLToLamports converts a SOL amount such as "1.5" to lamports.
func SOLToLamports(amount string) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	lamports := d.Shift(SOLDecimals)
	if !lamports.Equal(lamports.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, SOLDecimals)
	}
	if !lamports.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}

	return lamports.BigInt().Uint64(), nil
}

// LamportsToSOL formats lamports as a SOL decimal string.
func LamportsToSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -SOLDecimals).String()
}

// FormatBalance renders lamports as "<amount> SOL".
func FormatBalance(lamports uint64) string {
	return LamportsToSOL(lamports) + " SOL"
}

// NewTransferTx builds an unsigned system transfer paid for by from.
func NewTransferTx(from, to solana.PublicKey, lamports uint64, recentBlockhash solana.Hash) (*solana.Transaction, error) {
	if lamports == 0 {
		return nil, fmt.Errorf("%w: zero lamports", ErrInvalidAmount)
	}
	if recentBlockhash.IsZero() {
		return nil, errors.New("blockhash is empty")
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		recentBlockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return tx, nil
}

// EncodeTransaction serializes tx to base58, the form wallets display and accept.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return base58.Encode(raw), nil
}
