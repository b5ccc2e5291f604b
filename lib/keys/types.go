package keys

import (
	"errors"

	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// ErrKeyUnavailable is returned when a relay is asked to use its keys before
// they have been generated.
var ErrKeyUnavailable = errors.New("relay keys are not available")

// KeyStore is an interface for retrieving a node's key pair
type KeyStore interface {
	// KeyID returns a short printable identifier derived from the public key
	KeyID() string
	// GetKeys returns the public and private keys or ErrKeyUnavailable
	GetKeys() (*rsa.RSAPublicKey, *rsa.RSAPrivateKey, error)
}
