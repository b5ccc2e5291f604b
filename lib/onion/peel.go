package onion

import (
	"github.com/go-i2p/go-onion/lib/crypto/aes"
	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/samber/oops"
)

// Peel removes one layer using the local private key.
//
// Unwrapping the session key or the payload fails with types.ErrDecryption,
// which is also what a layer addressed to another node produces. A session
// key that decrypts but is not a valid key text fails with types.ErrKeyFormat.
// A tampered payload fails its tag check with types.ErrDecryption, so
// ErrMalformedLayer is left for authentic payloads that do not parse.
func Peel(l *Layer, priv *rsa.RSAPrivateKey) (*Peeled, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	asymDec, err := priv.NewDecrypter()
	if err != nil {
		return nil, err
	}
	keyText, err := asymDec.Decrypt(l.EncryptedKey)
	if err != nil {
		return nil, oops.Wrapf(err, "unwrap session key")
	}

	sessionKey, err := aes.ImportKey(string(keyText))
	if err != nil {
		return nil, err
	}
	defer sessionKey.Zero()

	symDec, err := sessionKey.NewDecrypter()
	if err != nil {
		return nil, err
	}
	plaintext, err := symDec.Decrypt(l.EncryptedPayload)
	if err != nil {
		return nil, oops.Wrapf(err, "decrypt payload")
	}

	peeled := &Peeled{Kind: l.Kind, NextHop: l.NextHop, Plaintext: plaintext}
	switch l.Kind {
	case KindRelay:
		peeled.Next, err = UnmarshalLayer(plaintext)
	case KindFinal:
		peeled.Terminal, err = UnmarshalTerminal(plaintext)
	}
	if err != nil {
		return nil, err
	}
	return peeled, nil
}
