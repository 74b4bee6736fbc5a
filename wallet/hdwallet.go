package wallet

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/gagliardetto/solana-go"
)

// BIP-44 derivation paths per network.
const (
	EthDerivationPath = "m/44'/60'/0'/0/0"
	BtcDerivationPath = "m/44'/0'/0'/0/0"
	SolDerivationPath = "m/44'/501'/0'/0'"

	EthTestnetDerivationPath = "m/44'/1'/0'/0/0"
	BtcTestnetDerivationPath = "m/44'/1'/0'/0/0"
	SolTestnetDerivationPath = "m/44'/501'/0'/1'"
)

// deriveSecp256k1 walks a BIP-32 path from seed.
func deriveSecp256k1(seed []byte, path string) (*btcec.PrivateKey, error) {
	indexes, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %s: %w", path, err)
	}

	// The params only select the extended key serialization prefix, which is never used.
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, i := range indexes {
		if key, err = key.Derive(i); err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", path, err)
		}
	}

	return key.ECPrivKey()
}

func deriveEthereumKey(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	key, err := deriveSecp256k1(seed, path)
	if err != nil {
		return nil, err
	}

	return key.ToECDSA(), nil
}

// deriveSolanaKey derives an ed25519 key with SLIP-0010, where every level is hardened.
func deriveSolanaKey(seed []byte, path string) (solana.PrivateKey, error) {
	indexes, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %s: %w", path, err)
	}

	key, chainCode := slip10Master(seed)
	for _, i := range indexes {
		if i < hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("ed25519 derivation requires hardened indexes: %s", path)
		}
		key, chainCode = slip10Child(key, chainCode, i)
	}

	return solana.PrivateKey(ed25519.NewKeyFromSeed(key)), nil
}

func slip10Master(seed []byte) (key, chainCode []byte) {
	sum := hmacSHA512([]byte("ed25519 seed"), seed)
	return sum[:32], sum[32:]
}

func slip10Child(key, chainCode []byte, index uint32) ([]byte, []byte) {
	data := make([]byte, 0, 1+len(key)+4)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)

	sum := hmacSHA512(chainCode, data)

	return sum[:32], sum[32:]
}

func hmacSHA512(key, data []byte) []byte {
	h := hmac.New(sha512.New, key)
	h.Write(data)

	return h.Sum(nil)
}
