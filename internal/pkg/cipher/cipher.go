// Package cipher holds the reversible credential cipher used to store account
// passwords, and the password encoders built on top of it.
//
// The cipher is symmetric: anyone holding the passphrase can recover stored
// passwords. BcryptEncoder is the one-way alternative, selected with
// PASSWORD_SCHEME=bcrypt.
package cipher

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the fixed key length the passphrase is padded or truncated to.
const KeySize = chacha20poly1305.KeySize

var ErrMalformed = errors.New("cipher: malformed ciphertext")

// Cipher encrypts and decrypts short secrets with XChaCha20-Poly1305.
type Cipher struct {
	key []byte
}

// New derives the key from passphrase: its bytes are right-padded with
// spaces, then cut to KeySize.
func New(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("cipher: empty passphrase")
	}
	return &Cipher{key: deriveKey(passphrase)}, nil
}

func deriveKey(passphrase string) []byte {
	key := []byte(passphrase)
	if len(key) < KeySize {
		key = append(key, bytes.Repeat([]byte{' '}, KeySize-len(key))...)
	}
	return key[:KeySize]
}

// Encrypt returns base64url(nonce || sealed).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("cipher: init: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cipher: nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered input or a different key yields an error.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformed
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("cipher: init: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformed
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("cipher: open: %w", err)
	}
	return string(plain), nil
}
