package seal

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// #region sealer
// Sealer signs audit payloads with a per-installation key so the external
// hash-chain logger can verify that integrity events originated here.
type Sealer struct {
	keyPath string
	key     []byte
}

// NewSealer loads the key at keyPath, generating and persisting a fresh
// 32-byte key on first use.
func NewSealer(keyPath string) (*Sealer, error) {
	key, err := ensureKey(keyPath)
	if err != nil {
		return nil, err
	}
	return &Sealer{keyPath: keyPath, key: key}, nil
}

// #endregion sealer

// #region key
func ensureKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil && len(data) >= 32 {
		return data[:32], nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("key dir: %w", err)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

// #endregion key

// #region digest
// Digest returns the hex HMAC-SHA256 of payload under the installation key.
func (s *Sealer) Digest(payload []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether digest matches payload under the installation key.
func (s *Sealer) Verify(payload []byte, digest string) bool {
	want, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), want)
}

// #endregion digest
