// Package wallet is the local keyring: a BIP-39 mnemonic sealed in an encrypted vault, a
// short-lived unlock session, and BIP-44 key derivation for the supported chains. Keyring keys
// become providers that are registered with a provider.Manager explicitly.
package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"

	"github.com/chinmay1088/vaultkit/chains/bitcoin"
)

const (
	vaultFile   = "wallet.vault"
	sessionFile = "session.json"

	// DefaultSessionTTL is how long an unlock lasts.
	DefaultSessionTTL = 30 * time.Minute
)

var (
	ErrLocked          = errors.New("wallet is locked")
	ErrNoVault         = errors.New("no wallet found, run init first")
	ErrVaultExists     = errors.New("wallet already exists")
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
)

type session struct {
	Token      string    `json:"token"`
	Mnemonic   string    `json:"mnemonic"`
	Expiration time.Time `json:"expiration"`
	Network    string    `json:"network"`
}

// Option configures a Keyring.
type Option func(*Keyring)

// WithSessionTTL sets how long an unlock lasts.
func WithSessionTTL(ttl time.Duration) Option {
	return func(k *Keyring) { k.sessionTTL = ttl }
}

// WithKDF sets the scrypt parameters for newly sealed vaults.
func WithKDF(kdf KDFParams) Option {
	return func(k *Keyring) { k.kdf = kdf }
}

// Keyring manages the vault and session files inside one directory. Sessions are bound to the
// network they were opened on.
type Keyring struct {
	dir        string
	network    string
	sessionTTL time.Duration
	kdf        KDFParams
	now        func() time.Time

	mu       sync.Mutex
	mnemonic string
}

// NewKeyring returns a keyring stored in dir for network (mainnet or testnet).
func NewKeyring(dir, network string, opts ...Option) *Keyring {
	k := &Keyring{
		dir:        dir,
		network:    network,
		sessionTTL: DefaultSessionTTL,
		kdf:        DefaultKDF,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}

	return k
}

func (k *Keyring) Network() string { return k.network }

func (k *Keyring) IsTestnet() bool { return k.network == "testnet" }

func (k *Keyring) vaultPath() string   { return filepath.Join(k.dir, vaultFile) }
func (k *Keyring) sessionPath() string { return filepath.Join(k.dir, sessionFile) }

// VaultExists reports whether a wallet was initialized.
func (k *Keyring) VaultExists() bool {
	_, err := os.Stat(k.vaultPath())
	return err == nil
}

// Initialize creates a wallet with a fresh 24-word mnemonic, which it returns, and unlocks it.
func (k *Keyring) Initialize(password string) (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	if err := k.Import(mnemonic, password); err != nil {
		return "", err
	}

	return mnemonic, nil
}

// Import seals an existing mnemonic and unlocks it. An existing vault is never overwritten.
func (k *Keyring) Import(mnemonic, password string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}
	if k.VaultExists() {
		return ErrVaultExists
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	vault, err := SealVault(mnemonic, password, k.kdf)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	if err := os.MkdirAll(k.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := writeJSON(k.vaultPath(), vault); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}

	k.mnemonic = mnemonic

	return k.createSession()
}

// Unlock opens the vault with password and starts a session.
func (k *Keyring) Unlock(password string) error {
	data, err := os.ReadFile(k.vaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoVault
	} else if err != nil {
		return fmt.Errorf("failed to read vault: %w", err)
	}

	var vault Vault
	if err := json.Unmarshal(data, &vault); err != nil {
		return fmt.Errorf("failed to decode vault: %w", err)
	}
	mnemonic, err := vault.Open(password)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.mnemonic = mnemonic

	return k.createSession()
}

// Lock forgets the mnemonic and removes the session file.
func (k *Keyring) Lock() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.mnemonic = ""
	if err := os.Remove(k.sessionPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

// Unlocked reports whether keys can be derived without a password.
func (k *Keyring) Unlocked() bool {
	_, err := k.Mnemonic()
	return err == nil
}

// Mnemonic returns the unlocked mnemonic, restoring it from a live session when needed.
func (k *Keyring) Mnemonic() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mnemonic != "" {
		return k.mnemonic, nil
	}
	if !k.loadSession() {
		return "", ErrLocked
	}

	return k.mnemonic, nil
}

func (k *Keyring) createSession() error {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	s := session{
		Token:      hex.EncodeToString(token),
		Mnemonic:   k.mnemonic,
		Expiration: k.now().Add(k.sessionTTL),
		Network:    k.network,
	}
	if err := writeJSON(k.sessionPath(), s); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

// loadSession restores the mnemonic from an unexpired session of the same network. Corrupt and
// expired sessions are removed.
func (k *Keyring) loadSession() bool {
	data, err := os.ReadFile(k.sessionPath())
	if err != nil {
		return false
	}

	var s session
	if err := json.Unmarshal(data, &s); err != nil || k.now().After(s.Expiration) {
		_ = os.Remove(k.sessionPath())
		return false
	}
	if s.Network != k.network || !bip39.IsMnemonicValid(s.Mnemonic) {
		return false
	}
	k.mnemonic = s.Mnemonic

	return true
}

func (k *Keyring) seed() ([]byte, error) {
	mnemonic, err := k.Mnemonic()
	if err != nil {
		return nil, err
	}

	return bip39.NewSeed(mnemonic, ""), nil
}

// EthereumKey derives the account key for the keyring's network.
func (k *Keyring) EthereumKey() (*ecdsa.PrivateKey, error) {
	seed, err := k.seed()
	if err != nil {
		return nil, err
	}
	path := EthDerivationPath
	if k.IsTestnet() {
		path = EthTestnetDerivationPath
	}

	key, err := deriveEthereumKey(seed, path)
	if err != nil {
		return nil, fmt.Errorf("failed to derive Ethereum key: %w", err)
	}

	return key, nil
}

func (k *Keyring) EthereumAddress() (common.Address, error) {
	key, err := k.EthereumKey()
	if err != nil {
		return common.Address{}, err
	}

	return ethcrypto.PubkeyToAddress(key.PublicKey), nil
}

// BitcoinKey derives the account key for the keyring's network.
func (k *Keyring) BitcoinKey() (*btcec.PrivateKey, error) {
	seed, err := k.seed()
	if err != nil {
		return nil, err
	}
	path := BtcDerivationPath
	if k.IsTestnet() {
		path = BtcTestnetDerivationPath
	}

	key, err := deriveSecp256k1(seed, path)
	if err != nil {
		return nil, fmt.Errorf("failed to derive Bitcoin key: %w", err)
	}

	return key, nil
}

// BitcoinAddress returns the native SegWit address of the Bitcoin key.
func (k *Keyring) BitcoinAddress() (btcutil.Address, error) {
	key, err := k.BitcoinKey()
	if err != nil {
		return nil, err
	}

	addr, err := bitcoin.P2WPKHAddress(key.PubKey(), bitcoin.Params(k.network))
	if err != nil {
		return nil, err
	}

	return addr, nil
}

// SolanaKey derives the account key for the keyring's network.
func (k *Keyring) SolanaKey() (solana.PrivateKey, error) {
	seed, err := k.seed()
	if err != nil {
		return nil, err
	}
	path := SolDerivationPath
	if k.IsTestnet() {
		path = SolTestnetDerivationPath
	}

	key, err := deriveSolanaKey(seed, path)
	if err != nil {
		return nil, fmt.Errorf("failed to derive Solana key: %w", err)
	}

	return key, nil
}

func (k *Keyring) SolanaAddress() (solana.PublicKey, error) {
	key, err := k.SolanaKey()
	if err != nil {
		return solana.PublicKey{}, err
	}

	return key.PublicKey(), nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
