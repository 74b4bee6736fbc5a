package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	vaultVersion = 1
	saltLen      = 32
	keyLen       = 32
)

// ErrInvalidPassword is returned when a vault cannot be opened with the given password.
var ErrInvalidPassword = errors.New("invalid password")

// KDFParams are the scrypt cost parameters a vault was sealed with.
type KDFParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// DefaultKDF is used for new vaults.
var DefaultKDF = KDFParams{N: 1 << 15, R: 8, P: 1}

// Vault is a mnemonic sealed with AES-256-GCM under an scrypt-derived key.
type Vault struct {
	Version int       `json:"version"`
	KDF     KDFParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Nonce   []byte    `json:"nonce"`
	Data    []byte    `json:"data"`
}

type vaultPayload struct {
	Mnemonic string `json:"mnemonic"`
}

// SealVault encrypts mnemonic under password.
func SealVault(mnemonic, password string, kdf KDFParams) (*Vault, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := newAEAD(password, salt, kdf)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	plain, err := json.Marshal(vaultPayload{Mnemonic: mnemonic})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault data: %w", err)
	}
	defer clearBytes(plain)

	return &Vault{
		Version: vaultVersion,
		KDF:     kdf,
		Salt:    salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, plain, nil),
	}, nil
}

// Open decrypts the mnemonic. A wrong password yields ErrInvalidPassword.
func (v *Vault) Open(password string) (string, error) {
	if v.Version != vaultVersion {
		return "", fmt.Errorf("unsupported vault version %d", v.Version)
	}

	aead, err := newAEAD(password, v.Salt, v.KDF)
	if err != nil {
		return "", err
	}

	plain, err := aead.Open(nil, v.Nonce, v.Data, nil)
	if err != nil {
		return "", ErrInvalidPassword
	}
	defer clearBytes(plain)

	var payload vaultPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return "", fmt.Errorf("failed to deserialize vault data: %w", err)
	}

	return payload.Mnemonic, nil
}

func newAEAD(password string, salt []byte, kdf KDFParams) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, kdf.N, kdf.R, kdf.P, keyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return cipher.NewGCM(block)
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
