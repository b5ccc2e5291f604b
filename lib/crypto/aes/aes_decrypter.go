package aes

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/go-i2p/crypto/hmac"
	"github.com/go-i2p/go-onion/lib/crypto/types"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// AESSymmetricDecrypter implements the Decrypter interface using AES
type AESSymmetricDecrypter struct {
	Key []byte
}

// Decrypt checks the trailing tag, splits the leading IV from blob and decrypts
// the remainder using AES-CBC with PKCS#7 padding. Every failure wraps
// types.ErrDecryption.
func (d *AESSymmetricDecrypter) Decrypt(blob []byte) ([]byte, error) {
	log.WithField("data_length", len(blob)).Debug("Decrypting data")

	encKey, macKey, err := subkeys(d.Key)
	if err != nil {
		log.WithError(err).Error("Failed to derive session subkeys")
		return nil, oops.Errorf("%w: %v", types.ErrDecryption, err)
	}

	// IV, at least one padded block and the tag
	if len(blob) < 2*aes.BlockSize+TagSize {
		log.WithField("data_length", len(blob)).Error("Ciphertext is truncated")
		return nil, oops.Errorf("%w: ciphertext is truncated (%d bytes)", types.ErrDecryption, len(blob))
	}

	body, sum := blob[:len(blob)-TagSize], blob[len(blob)-TagSize:]
	if !hmac.Equal(tag(macKey, body), sum) {
		log.Error("Ciphertext failed authentication")
		return nil, oops.Errorf("%w: authentication tag mismatch", types.ErrDecryption)
	}

	iv, data := body[:aes.BlockSize], body[aes.BlockSize:]
	if len(data)%aes.BlockSize != 0 {
		log.Error("Ciphertext is not a multiple of the block size")
		return nil, oops.Errorf("%w: ciphertext is not a multiple of the block size", types.ErrDecryption)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		log.WithError(err).Error("Failed to create AES cipher")
		return nil, oops.Errorf("%w: %v", types.ErrDecryption, err)
	}

	plaintext := make([]byte, len(data))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, data)

	plaintext, err = pkcs7Unpad(plaintext)
	if err != nil {
		log.WithError(err).Error("Failed to unpad plaintext")
		return nil, oops.Errorf("%w: %v", types.ErrDecryption, err)
	}

	log.WithField("plaintext_length", len(plaintext)).Debug("Data decrypted successfully")
	return plaintext, nil
}
