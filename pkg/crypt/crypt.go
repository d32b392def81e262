// Package crypt provides AES-256-GCM authenticated encryption for values
// the BFF stores outside its own memory, such as session records in Redis.
//
// Ciphertext is base64url(nonce || sealed) so it fits in any string field.
//
//	c, _ := crypt.New(config.AppKey())
//	enc, _ := c.EncryptJSON(record)
//	var out Record
//	_ = c.DecryptJSON(enc, &out)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

const keyInfo = "smartshelf session v1"

// Cipher seals and opens values with a key derived from an application secret.
type Cipher struct {
	aead cipher.AEAD
}

// New derives a 32-byte key from secret with HKDF-SHA256.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("crypt: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Cipher{aead: gcm}, nil
}

// EncryptBytes seals data and returns a base64url string.
func (c *Cipher) EncryptBytes(data []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, data, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// DecryptBytes opens a string produced by EncryptBytes.
func (c *Cipher) DecryptBytes(encoded string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrDecrypt
	}

	plain, err := c.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// EncryptJSON marshals v to JSON then encrypts it.
func (c *Cipher) EncryptJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypt: marshal: %w", err)
	}
	return c.EncryptBytes(raw)
}

// DecryptJSON decrypts encoded and unmarshals the result into dest.
func (c *Cipher) DecryptJSON(encoded string, dest interface{}) error {
	raw, err := c.DecryptBytes(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("crypt: unmarshal: %w", err)
	}
	return nil
}
