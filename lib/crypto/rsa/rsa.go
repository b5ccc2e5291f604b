package rsa

import (
	"crypto/rsa"
	"crypto/sha256"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// MinKeyBits is the smallest modulus accepted for generation or import.
const MinKeyBits = 2048

// oaepLabel is empty; layers carry no associated label.
var oaepLabel = []byte{}

// GenerateKeyPair produces a fresh RSA key pair for OAEP encryption.
// bits below MinKeyBits are rejected.
func GenerateKeyPair(bits int) (*RSAPublicKey, *RSAPrivateKey, error) {
	if bits < MinKeyBits {
		return nil, nil, oops.Errorf("RSA key size must be at least %d bits, got %d", MinKeyBits, bits)
	}

	log.WithField("bits", bits).Debug("Generating RSA key pair")
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		log.WithError(err).Error("Failed to generate RSA key")
		return nil, nil, oops.Errorf("failed to generate RSA key: %w", err)
	}

	private := &RSAPrivateKey{key: priv}
	return private.Public(), private, nil
}

func encryptOAEP(pub *rsa.PublicKey, data []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, data, oaepLabel)
}

func decryptOAEP(priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, data, oaepLabel)
}
