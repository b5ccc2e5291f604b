package rsa

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"

	"github.com/go-i2p/go-onion/lib/crypto/types"
	"github.com/samber/oops"
)

// RSAPublicKey is a relay's public key. Senders wrap per-layer session keys under it.
type RSAPublicKey struct {
	key *rsa.PublicKey
}

// NewPublicKey wraps an existing *rsa.PublicKey.
func NewPublicKey(pub *rsa.PublicKey) *RSAPublicKey {
	return &RSAPublicKey{key: pub}
}

// ImportPublicKey parses the base64 PKIX DER form produced by Export.
// Malformed text, non-RSA keys and moduli under MinKeyBits fail with types.ErrKeyFormat.
func ImportPublicKey(text string) (*RSAPublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, oops.Errorf("%w: public key is not base64: %v", types.ErrKeyFormat, err)
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, oops.Errorf("%w: public key is not PKIX DER: %v", types.ErrKeyFormat, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, oops.Errorf("%w: public key is %T, not RSA", types.ErrKeyFormat, parsed)
	}
	if pub.N.BitLen() < MinKeyBits {
		return nil, oops.Errorf("%w: RSA modulus is %d bits, need %d", types.ErrKeyFormat, pub.N.BitLen(), MinKeyBits)
	}
	return &RSAPublicKey{key: pub}, nil
}

// Bytes returns the PKIX DER encoding of the key.
func (r *RSAPublicKey) Bytes() []byte {
	der, err := x509.MarshalPKIXPublicKey(r.key)
	if err != nil {
		// *rsa.PublicKey is always marshalable
		log.WithError(err).Error("Failed to marshal RSA public key")
		return nil
	}
	return der
}

// Len returns the modulus size in bytes.
func (r *RSAPublicKey) Len() int {
	return r.key.Size()
}

// Export returns the base64 text form of the key.
func (r *RSAPublicKey) Export() string {
	return base64.StdEncoding.EncodeToString(r.Bytes())
}

// Equal reports whether both keys have the same modulus and exponent.
func (r *RSAPublicKey) Equal(other *RSAPublicKey) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.key.Equal(other.key)
}

// NewEncrypter returns an OAEP encrypter for this key.
func (r *RSAPublicKey) NewEncrypter() (types.Encrypter, error) {
	return &RSAEncrypter{key: r.key}, nil
}

// RSAEncrypter encrypts small payloads (session keys) with RSA-OAEP/SHA-256.
type RSAEncrypter struct {
	key *rsa.PublicKey
}

// Encrypt implements types.Encrypter.
func (e *RSAEncrypter) Encrypt(data []byte) ([]byte, error) {
	ct, err := encryptOAEP(e.key, data)
	if err != nil {
		log.WithError(err).Error("OAEP encryption failed")
		return nil, oops.Errorf("OAEP encryption failed: %w", err)
	}
	log.WithField("ciphertext_length", len(ct)).Debug("OAEP encrypted session key")
	return ct, nil
}

var (
	_ types.ReceivingPublicKey = &RSAPublicKey{}
	_ types.Encrypter          = &RSAEncrypter{}
)
