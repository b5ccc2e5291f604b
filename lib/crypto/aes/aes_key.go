package aes

import (
	"encoding/base64"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/go-onion/lib/crypto/types"
	"github.com/samber/oops"
)

// KeySize is the length in bytes of an AES-256 session key.
const KeySize = 32

// AESSymmetricKey is a single-use AES-256 session key protecting one onion layer.
// The IV is not part of the key: every encryption draws a fresh one and
// prepends it to the ciphertext.
type AESSymmetricKey struct {
	Key []byte // AES-256 key, always KeySize bytes
}

// GenerateKey returns a fresh random AES-256 key from a cryptographically secure source.
func GenerateKey() (*AESSymmetricKey, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		log.WithError(err).Error("Failed to generate AES key")
		return nil, oops.Errorf("failed to generate AES key: %w", err)
	}
	return &AESSymmetricKey{Key: key}, nil
}

// ImportKey parses the text form produced by Export.
func ImportKey(text string) (*AESSymmetricKey, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, oops.Errorf("%w: symmetric key is not base64: %v", types.ErrKeyFormat, err)
	}
	if len(raw) != KeySize {
		return nil, oops.Errorf("%w: symmetric key must be %d bytes, got %d", types.ErrKeyFormat, KeySize, len(raw))
	}
	return &AESSymmetricKey{Key: raw}, nil
}

// Export returns the base64 text form of the key.
func (k *AESSymmetricKey) Export() string {
	return base64.StdEncoding.EncodeToString(k.Key)
}

// NewEncrypter creates a new AESSymmetricEncrypter
func (k *AESSymmetricKey) NewEncrypter() (types.Encrypter, error) {
	log.Debug("Creating new AESSymmetricEncrypter")
	return &AESSymmetricEncrypter{Key: k.Key}, nil
}

// Len returns the length of the key
func (k *AESSymmetricKey) Len() int {
	return len(k.Key)
}

// NewDecrypter creates a new AESSymmetricDecrypter
func (k *AESSymmetricKey) NewDecrypter() (types.Decrypter, error) {
	return &AESSymmetricDecrypter{Key: k.Key}, nil
}

// Zero overwrites the key bytes.
func (k *AESSymmetricKey) Zero() {
	for i := range k.Key {
		k.Key[i] = 0
	}
}
