package bitcoin

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/chinmay1088/vaultkit/chains"
)

var _ chains.BitcoinProvider = (*KeyProvider)(nil)

const messageMagic = "Bitcoin Signed Message:\n"

var (
	// ErrNoBroadcaster is returned when a transaction must be sent but no broadcaster is set.
	ErrNoBroadcaster = errors.New("no broadcaster configured")
	// ErrNoInputsSigned is returned when none of a transaction's inputs belong to the key.
	ErrNoInputsSigned = errors.New("no inputs spend from this wallet")
)

// Broadcaster submits signed transactions to the network.
type Broadcaster interface {
	Broadcast(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error)
}

// KeyProvider signs with a locally held secp256k1 key and receives on its P2WPKH address.
type KeyProvider struct {
	key         *btcec.PrivateKey
	params      *chaincfg.Params
	address     *btcutil.AddressWitnessPubKeyHash
	pkScript    []byte
	broadcaster Broadcaster
}

// NewKeyProvider derives the P2WPKH address of key on params. broadcaster may be nil for offline
// signing.
func NewKeyProvider(key *btcec.PrivateKey, params *chaincfg.Params, broadcaster Broadcaster) (*KeyProvider, error) {
	addr, err := P2WPKHAddress(key.PubKey(), params)
	if err != nil {
		return nil, err
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create script: %w", err)
	}

	return &KeyProvider{
		key:         key,
		params:      params,
		address:     addr,
		pkScript:    script,
		broadcaster: broadcaster,
	}, nil
}

// P2WPKHAddress returns the native segwit address of pub.
func P2WPKHAddress(pub *btcec.PublicKey, params *chaincfg.Params) (*btcutil.AddressWitnessPubKeyHash, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), params)
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return addr, nil
}

func (p *KeyProvider) Type() chains.BlockchainType { return chains.Bitcoin }

func (p *KeyProvider) Address() btcutil.Address { return p.address }

// PkScript returns the output script paying to the provider's address.
func (p *KeyProvider) PkScript() []byte { return p.pkScript }

// SignMessage returns a 65 byte compact signature over the Bitcoin signed message digest of msg.
func (p *KeyProvider) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	digest, err := messageDigest(msg)
	if err != nil {
		return nil, err
	}

	sig, err := ecdsa.SignCompact(p.key, digest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	return sig, nil
}

// VerifyMessage reports whether sig is a signature over msg by the key behind addr.
func VerifyMessage(addr btcutil.Address, msg, sig []byte, params *chaincfg.Params) (bool, error) {
	digest, err := messageDigest(msg)
	if err != nil {
		return false, err
	}
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return false, fmt.Errorf("failed to recover key: %w", err)
	}
	recovered, err := P2WPKHAddress(pub, params)
	if err != nil {
		return false, err
	}

	return recovered.EncodeAddress() == addr.EncodeAddress(), nil
}

func messageDigest(msg []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarString(&buf, 0, messageMagic); err != nil {
		return nil, err
	}
	if err := wire.WriteVarBytes(&buf, 0, msg); err != nil {
		return nil, err
	}

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// SignTransaction returns a copy of tx with a witness on every input spending from the provider's
// address. prevOuts must hold the spent output for each input, in order.
func (p *KeyProvider) SignTransaction(_ context.Context, tx *wire.MsgTx, prevOuts []*wire.TxOut) (*wire.MsgTx, error) {
	if len(prevOuts) != len(tx.TxIn) {
		return nil, fmt.Errorf("got %d previous outputs for %d inputs", len(prevOuts), len(tx.TxIn))
	}

	signed := tx.Copy()
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range signed.TxIn {
		fetcher.AddPrevOut(in.PreviousOutPoint, prevOuts[i])
	}
	hashes := txscript.NewTxSigHashes(signed, fetcher)

	var n int
	for i, in := range signed.TxIn {
		prev := prevOuts[i]
		if !bytes.Equal(prev.PkScript, p.pkScript) {
			continue
		}
		witness, err := txscript.WitnessSignature(signed, hashes, i, prev.Value, prev.PkScript, txscript.SigHashAll, p.key, true)
		if err != nil {
			return nil, fmt.Errorf("failed to sign input %d: %w", i, err)
		}
		in.Witness = witness
		n++
	}
	if n == 0 {
		return nil, ErrNoInputsSigned
	}

	return signed, nil
}

// SendTransaction broadcasts an already signed transaction.
func (p *KeyProvider) SendTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error) {
	if p.broadcaster == nil {
		return nil, ErrNoBroadcaster
	}

	return p.broadcaster.Broadcast(ctx, tx)
}
