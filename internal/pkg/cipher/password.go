package cipher

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeCipher = "cipher"
	SchemeBcrypt = "bcrypt"
)

// CipherEncoder stores passwords with the reversible Cipher.
type CipherEncoder struct {
	c *Cipher
}

func NewCipherEncoder(c *Cipher) *CipherEncoder {
	return &CipherEncoder{c: c}
}

func (e *CipherEncoder) Encode(plain string) (string, error) {
	return e.c.Encrypt(plain)
}

// Verify decrypts the stored value and compares in constant time.
func (e *CipherEncoder) Verify(stored, plain string) (bool, error) {
	decrypted, err := e.c.Decrypt(stored)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(decrypted), []byte(plain)) == 1, nil
}

// BcryptEncoder stores one-way salted hashes.
type BcryptEncoder struct {
	cost int
}

func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

func (e *BcryptEncoder) Encode(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), e.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (e *BcryptEncoder) Verify(stored, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Encoder is the common shape of both encoders.
type Encoder interface {
	Encode(plain string) (string, error)
	Verify(stored, plain string) (bool, error)
}

// NewEncoder picks the encoder for scheme. An empty scheme means cipher.
func NewEncoder(scheme, passphrase string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeCipher:
		c, err := New(passphrase)
		if err != nil {
			return nil, err
		}
		return NewCipherEncoder(c), nil
	case SchemeBcrypt:
		return NewBcryptEncoder(bcrypt.DefaultCost), nil
	default:
		return nil, fmt.Errorf("cipher: unknown password scheme %q", scheme)
	}
}
