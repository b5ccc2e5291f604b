package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/go-onion/lib/metrics"
	"github.com/go-i2p/go-onion/lib/onion"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// ErrForwarding is returned when the next hop or the final recipient cannot
// be reached or refuses the message.
var ErrForwarding = errors.New("forwarding failed")

// Forwarder sends a layer to the hop named by nextHop.
type Forwarder interface {
	Forward(ctx context.Context, nextHop string, layer *onion.Layer) error
}

// Deliverer hands terminal content to a recipient's inbox.
type Deliverer interface {
	Deliver(ctx context.Context, recipientID int, content string) error
}

// PrivateKeySource yields the relay's private key. Before the keys exist it
// must return an error wrapping keys.ErrKeyUnavailable.
type PrivateKeySource interface {
	PrivateKey() (*rsa.RSAPrivateKey, error)
}

// Result describes a successfully processed layer.
type Result struct {
	Kind        onion.Kind
	NextHop     string // set for RELAY
	RecipientID int    // set for FINAL
}

// Processor peels and routes onion layers for one relay.
type Processor struct {
	keys      PrivateKeySource
	forwarder Forwarder
	deliverer Deliverer
	metrics   *metrics.Metrics
	now       func() time.Time

	last atomic.Pointer[Diagnostics]
}

// NewProcessor creates a relay Processor. m may be nil.
func NewProcessor(keySource PrivateKeySource, fwd Forwarder, dlv Deliverer, m *metrics.Metrics) (*Processor, error) {
	if keySource == nil {
		return nil, fmt.Errorf("key source cannot be nil")
	}
	if fwd == nil {
		return nil, fmt.Errorf("forwarder cannot be nil")
	}
	if dlv == nil {
		return nil, fmt.Errorf("deliverer cannot be nil")
	}
	p := &Processor{
		keys:      keySource,
		forwarder: fwd,
		deliverer: dlv,
		metrics:   m,
		now:       time.Now,
	}
	p.last.Store(&Diagnostics{})
	return p, nil
}

// ForwardMessage processes one incoming layer.
//
// It records the ciphertext, peels the layer with the local private key and
// then forwards the inner layer to its next hop or delivers the terminal
// content. Errors wrap keys.ErrKeyUnavailable, types.ErrDecryption,
// types.ErrKeyFormat, onion.ErrMalformedLayer or ErrForwarding.
func (p *Processor) ForwardMessage(ctx context.Context, layer *onion.Layer) (*Result, error) {
	if layer == nil {
		return nil, oops.Errorf("%w: nil layer", onion.ErrMalformedLayer)
	}
	kind := string(layer.Kind)

	snap := &Diagnostics{
		Kind:               layer.Kind,
		ReceivedCiphertext: layer.EncryptedPayload,
		Outcome:            OutcomeReceived,
		UpdatedAt:          p.now(),
	}
	p.last.Store(snap)

	priv, err := p.keys.PrivateKey()
	if err != nil {
		return nil, p.fail(snap, kind, oops.Wrapf(err, "relay not initialized"))
	}

	peeled, err := onion.Peel(layer, priv)
	if err != nil {
		return nil, p.fail(snap, kind, err)
	}

	snap = snap.with(func(d *Diagnostics) {
		d.ReceivedPlaintext = peeled.Plaintext
		d.UpdatedAt = p.now()
	})
	p.last.Store(snap)

	switch peeled.Kind {
	case onion.KindRelay:
		return p.relay(ctx, snap, peeled)
	default:
		return p.deliver(ctx, snap, peeled)
	}
}

func (p *Processor) relay(ctx context.Context, snap *Diagnostics, peeled *onion.Peeled) (*Result, error) {
	snap = snap.with(func(d *Diagnostics) { d.ForwardTarget = peeled.NextHop })
	p.last.Store(snap)

	started := p.now()
	err := p.forwarder.Forward(ctx, peeled.NextHop, peeled.Next)
	p.metrics.ObserveForward(started)
	if err != nil {
		return nil, p.fail(snap, string(onion.KindRelay), wrapForwarding(err, "forward to %s", peeled.NextHop))
	}

	p.succeed(snap, string(onion.KindRelay), OutcomeForwarded)
	log.WithFields(logger.Fields{
		"at":       "(Processor) ForwardMessage",
		"next_hop": peeled.NextHop,
	}).Debug("layer forwarded")
	return &Result{Kind: onion.KindRelay, NextHop: peeled.NextHop}, nil
}

func (p *Processor) deliver(ctx context.Context, snap *Diagnostics, peeled *onion.Peeled) (*Result, error) {
	recipient := peeled.Terminal.RecipientID
	snap = snap.with(func(d *Diagnostics) { d.ForwardTarget = strconv.Itoa(recipient) })
	p.last.Store(snap)

	started := p.now()
	err := p.deliverer.Deliver(ctx, recipient, peeled.Terminal.Content)
	p.metrics.ObserveForward(started)
	if err != nil {
		return nil, p.fail(snap, string(onion.KindFinal), wrapForwarding(err, "deliver to recipient %d", recipient))
	}

	p.succeed(snap, string(onion.KindFinal), OutcomeDelivered)
	log.WithFields(logger.Fields{
		"at":           "(Processor) ForwardMessage",
		"recipient_id": recipient,
	}).Debug("terminal message delivered")
	return &Result{Kind: onion.KindFinal, RecipientID: recipient}, nil
}

func (p *Processor) succeed(snap *Diagnostics, kind string, outcome Outcome) {
	p.last.Store(snap.with(func(d *Diagnostics) {
		d.Outcome = outcome
		d.UpdatedAt = p.now()
	}))
	p.metrics.LayerProcessed(kind, string(outcome))
}

func (p *Processor) fail(snap *Diagnostics, kind string, err error) error {
	p.last.Store(snap.with(func(d *Diagnostics) {
		d.Outcome = OutcomeFailed
		d.Error = err.Error()
		d.UpdatedAt = p.now()
	}))
	p.metrics.LayerProcessed(kind, metrics.OutcomeFailed)
	log.WithFields(logger.Fields{
		"at":     "(Processor) ForwardMessage",
		"kind":   kind,
		"reason": err.Error(),
	}).Warn("layer processing failed")
	return err
}

// wrapForwarding keeps ErrForwarding reachable whatever the forwarder returned.
func wrapForwarding(err error, format string, args ...interface{}) error {
	if errors.Is(err, ErrForwarding) {
		return oops.Wrapf(err, format, args...)
	}
	return oops.Errorf("%w: %s: %w", ErrForwarding, fmt.Sprintf(format, args...), err)
}

// Last returns the most recent diagnostics snapshot.
func (p *Processor) Last() Diagnostics {
	return *p.last.Load()
}
