package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Prefix marks a stored value as encrypted. Values without the prefix are
// passed through unchanged so plain-text configs written before encryption
// was enabled keep working.
const Prefix = "encrypted:"

// EnvKeyName is the environment variable holding a base64 32-byte key.
// It takes precedence over the key file.
const EnvKeyName = "MAILPROBE_ENCRYPTION_KEY"

const keyFileName = ".encryption_key"

// Keychain encrypts and decrypts secret configuration values (passwords).
// Only secret fields are encrypted; all other configuration stays plain.
type Keychain struct {
	key []byte
}

// Load resolves the encryption key. Precedence:
//  1. MAILPROBE_ENCRYPTION_KEY environment variable (base64)
//  2. <dataDir>/.encryption_key file, auto-created with 0600 on first use
func Load(dataDir string) (*Keychain, error) {
	if v := os.Getenv(EnvKeyName); v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", EnvKeyName, err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("%s must decode to %d bytes, got %d", EnvKeyName, chacha20poly1305.KeySize, len(key))
		}
		return &Keychain{key: key}, nil
	}

	path := filepath.Join(dataDir, keyFileName)
	if data, err := os.ReadFile(path); err == nil {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("decode key file %s: %w", path, err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file %s must decode to %d bytes", path, chacha20poly1305.KeySize)
		}
		return &Keychain{key: key}, nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return &Keychain{key: key}, nil
}

// IsEncrypted reports whether the value carries the encrypted prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Encrypt returns the value encrypted and prefixed. Empty and
// already-encrypted values are returned unchanged.
func (k *Keychain) Encrypt(value string) (string, error) {
	if value == "" || IsEncrypted(value) {
		return value, nil
	}
	aead, err := chacha20poly1305.NewX(k.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), nil)
	return Prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without the prefix are returned as-is.
func (k *Keychain) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}
	aead, err := chacha20poly1305.NewX(k.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("secret too short")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt secret: %w", err)
	}
	return string(plain), nil
}
