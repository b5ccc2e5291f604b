// Package directory keeps the registry of relay nodes and their public keys.
//
// The directory is insertion ordered and grows monotonically: there is no
// removal. Node ids are unique. Registering an id again with the same key is
// a no-op; registering it with a different key fails with ErrConflictingKey,
// because a registered Node is immutable.
package directory

import (
	"errors"
	"sync"

	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

var (
	// ErrConflictingKey is returned when an id is re-registered with another key.
	ErrConflictingKey = errors.New("node id already registered with a different key")

	// ErrInvalidNode is returned for negative ids.
	ErrInvalidNode = errors.New("invalid node")
)

// Node is a directory entry. PublicKey is the base64 text form of the relay's
// RSA public key.
type Node struct {
	NodeID    int    `json:"nodeId"`
	PublicKey string `json:"pubKey"`
}

// Directory is an in-memory, insertion-ordered node registry.
// It is safe for concurrent use.
type Directory struct {
	mu    sync.RWMutex
	nodes []Node
	index map[int]int
}

// New returns an empty Directory.
func New() *Directory {
	return &Directory{index: make(map[int]int)}
}

// Register adds a node. The key text must parse as an RSA public key,
// otherwise the error wraps types.ErrKeyFormat. It reports whether a new
// entry was created.
func (d *Directory) Register(nodeID int, publicKey string) (bool, error) {
	if nodeID < 0 {
		return false, oops.Errorf("%w: node id %d is negative", ErrInvalidNode, nodeID)
	}
	pub, err := rsa.ImportPublicKey(publicKey)
	if err != nil {
		return false, oops.With("node_id", nodeID).Wrapf(err, "register node %d", nodeID)
	}
	fields := logger.Fields{
		"at":          "(Directory) Register",
		"node_id":     nodeID,
		"fingerprint": keys.Fingerprint(pub),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if i, ok := d.index[nodeID]; ok {
		existing, err := rsa.ImportPublicKey(d.nodes[i].PublicKey)
		if err == nil && existing.Equal(pub) {
			log.WithFields(fields).Debug("node already registered")
			return false, nil
		}
		log.WithFields(fields).Warn("rejecting registration with a different key")
		return false, oops.Errorf("%w: node %d", ErrConflictingKey, nodeID)
	}

	d.index[nodeID] = len(d.nodes)
	d.nodes = append(d.nodes, Node{NodeID: nodeID, PublicKey: publicKey})
	log.WithFields(fields).Info("node registered")
	return true, nil
}

// ListNodes returns a snapshot of the registry in insertion order.
func (d *Directory) ListNodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Lookup returns the node with the given id.
func (d *Directory) Lookup(nodeID int) (Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[nodeID]
	if !ok {
		return Node{}, false
	}
	return d.nodes[i], true
}

// Size returns the number of registered nodes.
func (d *Directory) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.nodes)
}
