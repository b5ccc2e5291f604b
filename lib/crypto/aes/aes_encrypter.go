package aes

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/go-i2p/crypto/rand"
	"github.com/samber/oops"
)

// AESSymmetricEncrypter implements the Encrypter interface using AES
type AESSymmetricEncrypter struct {
	Key []byte
}

// Encrypt encrypts data using AES-CBC with PKCS#7 padding under a fresh random IV.
// The output is IV || ciphertext || tag, where tag is an HMAC-SHA256 over the
// IV and ciphertext, so decryption only needs the key.
func (e *AESSymmetricEncrypter) Encrypt(data []byte) ([]byte, error) {
	log.WithField("data_length", len(data)).Debug("Encrypting data")

	encKey, macKey, err := subkeys(e.Key)
	if err != nil {
		log.WithError(err).Error("Failed to derive session subkeys")
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		log.WithError(err).Error("Failed to create AES cipher")
		return nil, oops.Errorf("failed to create AES cipher: %w", err)
	}

	plaintext := pkcs7Pad(data, aes.BlockSize)
	body := make([]byte, aes.BlockSize+len(plaintext), aes.BlockSize+len(plaintext)+TagSize)
	iv := body[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		log.WithError(err).Error("Failed to generate IV")
		return nil, oops.Errorf("failed to generate IV: %w", err)
	}

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(body[aes.BlockSize:], plaintext)
	out := append(body, tag(macKey, body)...)

	log.WithField("ciphertext_length", len(out)).Debug("Data encrypted successfully")
	return out, nil
}
