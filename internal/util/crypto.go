package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrNoAuditKey 未配置 security.encryption_key
var ErrNoAuditKey = errors.New("audit encryption key is empty")

// AuditCipher 加解密审计日志字段（AES-256-GCM）。
// 密文格式：base64(nonce + ciphertext)，可直接存入字符串列。
type AuditCipher struct {
	aead cipher.AEAD
}

// NewAuditCipher 由配置的密钥派生 32 字节 key，任意长度的密钥都可用。
func NewAuditCipher(key string) (*AuditCipher, error) {
	if key == "" {
		return nil, ErrNoAuditKey
	}
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &AuditCipher{aead: aead}, nil
}

// Seal 加密一个字段，空串原样返回
func (c *AuditCipher) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open 解密 Seal 的输出
func (c *AuditCipher) Open(enc string) (string, error) {
	if enc == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	ns := c.aead.NonceSize()
	if len(data) < ns {
		return "", fmt.Errorf("cipher too short")
	}
	plain, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}
