// Package crypto seals sensitive employee fields (national ID, bank
// account) before they reach a SQL store.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks values written by Seal; anything else is read back as
// plain text.
const sealedPrefix = "enc:v1:"

var ErrCiphertext = errors.New("malformed ciphertext")

type Cipher struct {
	aead cipher.AEAD
}

// New builds a cipher from a 32 byte key given as hex or base64. An empty
// key yields a pass-through cipher.
func New(key string) (*Cipher, error) {
	if strings.TrimSpace(key) == "" {
		return &Cipher{}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Configured() bool {
	return c != nil && c.aead != nil
}

// Seal encrypts value with a random nonce. Empty values and values sealed
// by an unconfigured cipher are returned unchanged.
func (c *Cipher) Seal(value string) (string, error) {
	if value == "" || !c.Configured() {
		return value, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(value), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as is,
// so rows written before a key was configured stay readable.
func (c *Cipher) Open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}
	if !c.Configured() {
		return "", fmt.Errorf("%w: value is encrypted but no key is configured", ErrCiphertext)
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCiphertext, err)
	}
	size := c.aead.NonceSize()
	if len(raw) < size {
		return "", fmt.Errorf("%w: too short", ErrCiphertext)
	}
	plain, err := c.aead.Open(nil, raw[:size], raw[size:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCiphertext, err)
	}
	return string(plain), nil
}

func decodeKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
