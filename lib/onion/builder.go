package onion

import (
	"fmt"

	"github.com/go-i2p/go-onion/lib/crypto/aes"
	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Hop is one relay of a circuit as seen by the sender.
type Hop struct {
	NodeID    int
	PublicKey *rsa.RSAPublicKey
}

// HopNamer turns a node id into the next-hop string carried in RELAY layers.
type HopNamer interface {
	NextHop(nodeID int) string
}

// Builder constructs layered ciphertext for a circuit.
type Builder struct {
	namer HopNamer
}

// NewBuilder creates a Builder that names hops with namer.
// Returns an error if namer is nil.
func NewBuilder(namer HopNamer) (*Builder, error) {
	if namer == nil {
		return nil, fmt.Errorf("hop namer cannot be nil")
	}
	return &Builder{namer: namer}, nil
}

// Build wraps {recipientID, content} for path, innermost layer first, and
// returns the outermost layer, which is addressed to path[0].
//
// The last hop gets a FINAL layer; every earlier hop gets a RELAY layer naming
// its successor. Each layer's session key is encrypted under the public key of
// the hop that peels that layer.
func (b *Builder) Build(recipientID int, content string, path []Hop) (*Layer, error) {
	if len(path) == 0 {
		return nil, oops.Errorf("circuit is empty")
	}
	for i, hop := range path {
		if hop.PublicKey == nil {
			return nil, oops.Errorf("hop %d (node %d) has no public key", i, hop.NodeID)
		}
	}

	terminal, err := MarshalTerminal(&Terminal{RecipientID: recipientID, Content: content})
	if err != nil {
		return nil, err
	}

	exit := len(path) - 1
	layer, err := seal(KindFinal, "", terminal, path[exit].PublicKey)
	if err != nil {
		return nil, oops.Wrapf(err, "seal layer for hop %d", exit)
	}

	for i := exit - 1; i >= 0; i-- {
		inner, err := MarshalLayer(layer)
		if err != nil {
			return nil, err
		}
		layer, err = seal(KindRelay, b.namer.NextHop(path[i+1].NodeID), inner, path[i].PublicKey)
		if err != nil {
			return nil, oops.Wrapf(err, "seal layer for hop %d", i)
		}
	}

	log.WithFields(logger.Fields{
		"at":            "(Builder) Build",
		"hops":          len(path),
		"payload_bytes": len(layer.EncryptedPayload),
	}).Debug("onion built")
	return layer, nil
}

// seal encrypts inner under a fresh session key and wraps that key for pub.
func seal(kind Kind, nextHop string, inner []byte, pub *rsa.RSAPublicKey) (*Layer, error) {
	sessionKey, err := aes.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer sessionKey.Zero()

	symEnc, err := sessionKey.NewEncrypter()
	if err != nil {
		return nil, err
	}
	payload, err := symEnc.Encrypt(inner)
	if err != nil {
		return nil, err
	}

	asymEnc, err := pub.NewEncrypter()
	if err != nil {
		return nil, err
	}
	wrappedKey, err := asymEnc.Encrypt([]byte(sessionKey.Export()))
	if err != nil {
		return nil, err
	}

	return &Layer{
		Kind:             kind,
		EncryptedKey:     wrappedKey,
		EncryptedPayload: payload,
		NextHop:          nextHop,
	}, nil
}
