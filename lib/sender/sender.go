// Package sender originates onion messages: it fetches the directory, picks a
// fresh circuit, wraps the message and hands the outer layer to the entry hop.
package sender

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-i2p/go-onion/lib/circuit"
	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/metrics"
	"github.com/go-i2p/go-onion/lib/onion"
	"github.com/go-i2p/go-onion/lib/relay"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// ErrInvalidRecipient is returned for negative recipient ids.
var ErrInvalidRecipient = errors.New("invalid recipient")

// NodeLister returns the current directory snapshot.
type NodeLister interface {
	ListNodes(ctx context.Context) ([]directory.Node, error)
}

// Diagnostics describes the most recent send attempt.
type Diagnostics struct {
	Message     string
	RecipientID int
	Circuit     []int
	Outer       *onion.Layer
	Error       string
	SentAt      time.Time
}

// Sender builds and launches onion messages. It is safe for concurrent use;
// every Send draws a new circuit.
type Sender struct {
	nodes     NodeLister
	selector  *circuit.Selector
	builder   *onion.Builder
	namer     onion.HopNamer
	forwarder relay.Forwarder
	length    int
	metrics   *metrics.Metrics

	last atomic.Pointer[Diagnostics]
}

// New creates a Sender. length is the circuit length; m may be nil.
func New(nodes NodeLister, selector *circuit.Selector, namer onion.HopNamer, fwd relay.Forwarder, length int, m *metrics.Metrics) (*Sender, error) {
	if nodes == nil || selector == nil || fwd == nil {
		return nil, fmt.Errorf("sender requires a node lister, selector and forwarder")
	}
	if length <= 0 {
		return nil, fmt.Errorf("circuit length must be > 0, got %d", length)
	}
	builder, err := onion.NewBuilder(namer)
	if err != nil {
		return nil, err
	}
	s := &Sender{
		nodes:     nodes,
		selector:  selector,
		builder:   builder,
		namer:     namer,
		forwarder: fwd,
		length:    length,
		metrics:   m,
	}
	s.last.Store(&Diagnostics{})
	return s, nil
}

// Send delivers content to recipientID through a freshly selected circuit and
// returns the circuit's node ids in path order.
//
// Nothing is sent to any relay unless a full circuit could be selected and
// the onion built. Failures wrap circuit.ErrInsufficientNodes,
// types.ErrKeyFormat or relay.ErrForwarding.
func (s *Sender) Send(ctx context.Context, recipientID int, content string) ([]int, error) {
	diag := &Diagnostics{Message: content, RecipientID: recipientID, SentAt: time.Now()}
	ids, err := s.send(ctx, diag, recipientID, content)
	if err != nil {
		diag.Error = err.Error()
		s.metrics.MessageSent(metrics.OutcomeFailed)
		log.WithFields(logger.Fields{
			"at":           "(Sender) Send",
			"recipient_id": recipientID,
			"reason":       err.Error(),
		}).Warn("send failed")
	} else {
		s.metrics.MessageSent(metrics.OutcomeSent)
	}
	s.last.Store(diag)
	return ids, err
}

func (s *Sender) send(ctx context.Context, diag *Diagnostics, recipientID int, content string) ([]int, error) {
	if recipientID < 0 {
		return nil, oops.Errorf("%w: %d", ErrInvalidRecipient, recipientID)
	}

	nodes, err := s.nodes.ListNodes(ctx)
	if err != nil {
		return nil, oops.Wrapf(err, "list nodes")
	}

	path, err := s.selector.Select(nodes, s.length)
	if err != nil {
		return nil, err
	}
	ids := circuit.IDs(path)
	diag.Circuit = ids

	hops, err := toHops(path)
	if err != nil {
		return ids, err
	}

	outer, err := s.builder.Build(recipientID, content, hops)
	if err != nil {
		return ids, oops.Wrapf(err, "build onion")
	}
	diag.Outer = outer

	entry := s.namer.NextHop(ids[0])
	log.WithFields(logger.Fields{
		"at":      "(Sender) Send",
		"circuit": ids,
		"entry":   entry,
	}).Debug("sending onion to entry hop")

	started := time.Now()
	err = s.forwarder.Forward(ctx, entry, outer)
	s.metrics.ObserveForward(started)
	if err != nil {
		if !errors.Is(err, relay.ErrForwarding) {
			err = oops.Errorf("%w: entry %s: %w", relay.ErrForwarding, entry, err)
		}
		return ids, err
	}
	return ids, nil
}

func toHops(path []directory.Node) ([]onion.Hop, error) {
	hops := make([]onion.Hop, 0, len(path))
	for _, n := range path {
		pub, err := rsa.ImportPublicKey(n.PublicKey)
		if err != nil {
			return nil, oops.With("node_id", n.NodeID).Wrapf(err, "import public key")
		}
		log.WithFields(logger.Fields{
			"at":          "toHops",
			"node_id":     n.NodeID,
			"fingerprint": keys.Fingerprint(pub),
		}).Debug("hop key imported")
		hops = append(hops, onion.Hop{NodeID: n.NodeID, PublicKey: pub})
	}
	return hops, nil
}

// Last returns the diagnostics of the most recent send.
func (s *Sender) Last() Diagnostics {
	return *s.last.Load()
}
