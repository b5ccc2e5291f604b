package types

import "errors"

var (
	// ErrDecryption is returned when a key, IV and ciphertext do not fit together:
	// wrong key, corrupted or truncated data, or a layer addressed to another node.
	ErrDecryption = errors.New("decryption failed")

	// ErrKeyFormat is returned when imported key material is malformed.
	ErrKeyFormat = errors.New("invalid key format")
)
