package keys

import (
	"sync"
	"sync/atomic"

	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

type keyPair struct {
	public  *rsa.RSAPublicKey
	private *rsa.RSAPrivateKey
}

// RelayKeystore holds a relay's RSA key pair. Keys are written once, before the
// relay accepts traffic, and are read-only afterwards.
type RelayKeystore struct {
	bits int
	gen  sync.Mutex
	keys atomic.Pointer[keyPair]
}

var _ KeyStore = &RelayKeystore{}

// NewRelayKeystore creates an empty keystore that will generate keys of the given size.
func NewRelayKeystore(bits int) *RelayKeystore {
	log.WithFields(logger.Fields{
		"at":   "NewRelayKeystore",
		"bits": bits,
	}).Debug("Creating relay keystore")
	return &RelayKeystore{bits: bits}
}

// Generate creates the key pair. Calling it again after success is a no-op.
func (ks *RelayKeystore) Generate() error {
	ks.gen.Lock()
	defer ks.gen.Unlock()

	if ks.keys.Load() != nil {
		return nil
	}

	pub, priv, err := rsa.GenerateKeyPair(ks.bits)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":     "(RelayKeystore) Generate",
			"reason": err.Error(),
		}).Error("failed to generate relay keys")
		return oops.Wrapf(err, "relay key generation")
	}

	ks.keys.Store(&keyPair{public: pub, private: priv})
	log.WithFields(logger.Fields{
		"at":          "(RelayKeystore) Generate",
		"fingerprint": Fingerprint(pub),
	}).Info("relay keys generated")
	return nil
}

// GetKeys implements KeyStore.
func (ks *RelayKeystore) GetKeys() (*rsa.RSAPublicKey, *rsa.RSAPrivateKey, error) {
	kp := ks.keys.Load()
	if kp == nil {
		return nil, nil, ErrKeyUnavailable
	}
	return kp.public, kp.private, nil
}

// PublicKey returns the public half or ErrKeyUnavailable.
func (ks *RelayKeystore) PublicKey() (*rsa.RSAPublicKey, error) {
	pub, _, err := ks.GetKeys()
	return pub, err
}

// PrivateKey returns the private half or ErrKeyUnavailable.
func (ks *RelayKeystore) PrivateKey() (*rsa.RSAPrivateKey, error) {
	_, priv, err := ks.GetKeys()
	return priv, err
}

// KeyID implements KeyStore.
func (ks *RelayKeystore) KeyID() string {
	pub, err := ks.PublicKey()
	if err != nil {
		return "unavailable"
	}
	return Fingerprint(pub)
}

// Zero erases the private key. Later calls to GetKeys fail with ErrKeyUnavailable.
func (ks *RelayKeystore) Zero() {
	ks.gen.Lock()
	defer ks.gen.Unlock()
	if kp := ks.keys.Swap(nil); kp != nil {
		kp.private.Zero()
	}
}
