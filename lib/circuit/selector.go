// Package circuit chooses the ordered relay path for a message.
package circuit

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/logger"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// DefaultLength is the number of relays in a circuit: entry, middle, exit.
const DefaultLength = 3

// ErrInsufficientNodes is returned when the pool is smaller than the circuit.
var ErrInsufficientNodes = errors.New("insufficient nodes for circuit")

// Selector picks circuits uniformly at random without replacement.
// Path selection is not a confidentiality boundary, so math/rand is used;
// key and IV generation never draw from this source.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a Selector seeded from the clock.
func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource returns a Selector drawing from src. Used by tests
// that need a reproducible path.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// Select returns length distinct nodes in path order [entry, ..., exit].
// It fails with ErrInsufficientNodes if the pool has fewer distinct ids than length.
func (s *Selector) Select(nodes []directory.Node, length int) ([]directory.Node, error) {
	if length <= 0 {
		return nil, fmt.Errorf("circuit length must be > 0, got %d", length)
	}

	pool := lo.UniqBy(nodes, func(n directory.Node) int { return n.NodeID })
	if len(pool) < length {
		log.WithFields(logger.Fields{
			"at":        "(Selector) Select",
			"available": len(pool),
			"required":  length,
			"reason":    "insufficient_nodes",
		}).Warn("cannot build circuit")
		return nil, oops.Errorf("%w: need %d, have %d", ErrInsufficientNodes, length, len(pool))
	}

	s.mu.Lock()
	picked := lo.SamplesBy(pool, length, s.rng.Intn)
	s.mu.Unlock()

	log.WithFields(logger.Fields{
		"at":      "(Selector) Select",
		"circuit": IDs(picked),
	}).Debug("circuit selected")
	return picked, nil
}

// IDs returns the node ids of a circuit in path order.
func IDs(circuit []directory.Node) []int {
	return lo.Map(circuit, func(n directory.Node, _ int) int { return n.NodeID })
}
