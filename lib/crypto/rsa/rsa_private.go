package rsa

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"

	"github.com/go-i2p/go-onion/lib/crypto/types"
	"github.com/samber/oops"
)

// RSAPrivateKey is a relay's private key, used only to unwrap session keys.
type RSAPrivateKey struct {
	key *rsa.PrivateKey
}

// ImportPrivateKey parses the base64 PKCS#1 DER form produced by Export.
func ImportPrivateKey(text string) (*RSAPrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, oops.Errorf("%w: private key is not base64: %v", types.ErrKeyFormat, err)
	}
	priv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, oops.Errorf("%w: invalid RSA private key format: %v", types.ErrKeyFormat, err)
	}
	if priv.N.BitLen() < MinKeyBits {
		return nil, oops.Errorf("%w: RSA modulus is %d bits, need %d", types.ErrKeyFormat, priv.N.BitLen(), MinKeyBits)
	}
	return &RSAPrivateKey{key: priv}, nil
}

// Public returns the matching public key.
func (r *RSAPrivateKey) Public() *RSAPublicKey {
	return &RSAPublicKey{key: &r.key.PublicKey}
}

// Export returns the base64 PKCS#1 DER text form. Debug use only.
func (r *RSAPrivateKey) Export() string {
	return base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(r.key))
}

// NewDecrypter returns an OAEP decrypter for this key.
func (r *RSAPrivateKey) NewDecrypter() (types.Decrypter, error) {
	if r.key == nil {
		return nil, oops.Errorf("%w: private key is empty", types.ErrKeyFormat)
	}
	return &RSADecrypter{key: r.key}, nil
}

// Zero drops the reference to the key material and clears the private exponent.
func (r *RSAPrivateKey) Zero() {
	if r.key == nil {
		return
	}
	if r.key.D != nil {
		r.key.D.SetInt64(0)
	}
	for _, p := range r.key.Primes {
		p.SetInt64(0)
	}
	r.key = nil
	log.Debug("RSA private key securely erased")
}

// RSADecrypter unwraps RSA-OAEP/SHA-256 ciphertext.
type RSADecrypter struct {
	key *rsa.PrivateKey
}

// Decrypt implements types.Decrypter. A ciphertext made for another key fails
// with types.ErrDecryption.
func (d *RSADecrypter) Decrypt(data []byte) ([]byte, error) {
	pt, err := decryptOAEP(d.key, data)
	if err != nil {
		log.WithError(err).Debug("OAEP decryption failed")
		return nil, oops.Errorf("%w: %v", types.ErrDecryption, err)
	}
	return pt, nil
}

var (
	_ types.PrivateEncryptionKey = &RSAPrivateKey{}
	_ types.Decrypter            = &RSADecrypter{}
)
