package aes

import (
	"crypto/sha256"

	"github.com/go-i2p/crypto/hkdf"
	"github.com/go-i2p/crypto/hmac"
	"github.com/samber/oops"
)

// TagSize is the length of the HMAC-SHA256 tag closing every ciphertext.
const TagSize = sha256.Size

var subkeyInfo = []byte("go-onion layer subkeys v1")

// subkeys expands a session key into independent cipher and MAC keys.
func subkeys(key []byte) (encKey, macKey []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, oops.Errorf("session key must be %d bytes, got %d", KeySize, len(key))
	}
	okm, err := hkdf.NewHKDF().Derive(key, nil, subkeyInfo, 2*KeySize)
	if err != nil {
		return nil, nil, oops.Wrapf(err, "derive session subkeys")
	}
	return okm[:KeySize], okm[KeySize:], nil
}

// tag authenticates IV || ciphertext.
func tag(macKey, data []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(data)
	return mac.Sum(nil)
}
