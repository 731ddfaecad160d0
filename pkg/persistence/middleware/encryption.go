package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/ports"
)

// ErrNotEncrypted is returned when a stored value is not a ciphertext envelope.
var ErrNotEncrypted = errors.New("session value is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a
	// value, so keys can be rotated without dropping live conversations.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware encrypts every session value with AES-GCM.
// Conversation ids and keys stay readable; values become base64 ciphertext.
// Values read back come in their generic JSON form, like any serialising store.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes", i)
		}
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Get(ctx context.Context, conversationID, key string) (any, bool, error) {
	raw, ok, err := m.next.Get(ctx, conversationID, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	sealed, isString := raw.(string)
	if !isString {
		return nil, false, fmt.Errorf("%s: %w", key, ErrNotEncrypted)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", key, ErrNotEncrypted)
	}

	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}

	var value any
	if err := json.Unmarshal(plain, &value); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return value, true, nil
}

func (m *encryptionMiddleware) Set(ctx context.Context, conversationID, key string, value any) error {
	if value == nil {
		return m.next.Set(ctx, conversationID, key, nil)
	}
	plain, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return m.next.Set(ctx, conversationID, key, base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) Delete(ctx context.Context, conversationID, key string) error {
	return m.next.Delete(ctx, conversationID, key)
}

func (m *encryptionMiddleware) Clear(ctx context.Context, conversationID string) error {
	return m.next.Clear(ctx, conversationID)
}

// List forwards to the wrapped store when it can enumerate conversations.
func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	if l, ok := m.next.(ports.SessionLister); ok {
		return l.List(ctx)
	}
	return nil, errors.New("underlying store cannot list conversations")
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
