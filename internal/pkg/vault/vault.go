package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmptySecret   = errors.New("vault secret must not be empty")
	ErrDecryptFailed = errors.New("decryption failed")
)

// Vault encrypts and decrypts sensitive bank data at rest. Each unique ID
// gets its own AES-256 key derived as HMAC-SHA256(secret, uniqueID), so
// ciphertext is useless without both the system secret and the unique ID,
// and no per-record key storage is needed.
type Vault struct {
	secret []byte
}

// New creates a vault from the system-wide secret
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Vault{secret: []byte(secret)}, nil
}

// deriveKey returns the 32-byte key for a unique ID
func (v *Vault) deriveKey(uniqueID string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(uniqueID))
	return mac.Sum(nil)
}

// Encrypt encrypts plaintext under the key derived for uniqueID using
// AES-256-GCM with a random nonce. Output is base64(nonce || ciphertext).
func (v *Vault) Encrypt(uniqueID, plaintext string) (string, error) {
	block, err := aes.NewCipher(v.deriveKey(uniqueID))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails for ciphertext produced under a
// different unique ID or a different system secret.
func (v *Vault) Decrypt(uniqueID, encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptFailed
	}

	block, err := aes.NewCipher(v.deriveKey(uniqueID))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(sealed) < gcm.NonceSize() {
		return "", ErrDecryptFailed
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}
