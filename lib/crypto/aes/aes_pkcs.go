package aes

import (
	"bytes"
	"crypto/aes"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

func pkcs7Pad(data []byte, blockSize int) []byte {
	log.WithFields(logger.Fields{
		"data_length": len(data),
		"block_size":  blockSize,
	}).Debug("Applying PKCS#7 padding")

	padding := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data), len(data)+padding)
	copy(padded, data)
	padded = append(padded, bytes.Repeat([]byte{byte(padding)}, padding)...)

	log.WithField("padded_length", len(padded)).Debug("PKCS#7 padding applied")
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	length := len(data)
	if length == 0 {
		return nil, oops.Errorf("data is empty")
	}
	padding := int(data[length-1])
	if padding == 0 || padding > aes.BlockSize || padding > length {
		return nil, oops.Errorf("invalid padding")
	}
	paddingStart := length - padding
	for i := paddingStart; i < length; i++ {
		if data[i] != byte(padding) {
			return nil, oops.Errorf("invalid padding")
		}
	}

	return data[:paddingStart], nil
}
