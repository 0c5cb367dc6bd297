package common

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// Secrets encrypts provider credentials at rest with AES-256-GCM. The key
// material comes from configuration (secrets.key / FOLIO_SECRETS_KEY) and is
// hashed to a fixed-size key. Once decrypted, a credential is an opaque
// string to the rest of the system.
type Secrets struct {
	aead cipher.AEAD
}

// NewSecrets creates a Secrets cipher from the configured key material.
func NewSecrets(key string) (*Secrets, error) {
	if key == "" {
		return nil, fmt.Errorf("secrets key is required: set secrets.key in the config file or the FOLIO_SECRETS_KEY environment variable")
	}

	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Secrets{aead: aead}, nil
}

// Encrypt returns the base64 form of nonce||ciphertext. An empty plaintext
// stays empty so unset credentials round-trip unchanged.
func (s *Secrets) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (s *Secrets) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	sealed, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted value: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("encrypted value too short")
	}

	plaintext, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt value: %w", err)
	}

	return string(plaintext), nil
}
