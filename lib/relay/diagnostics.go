package relay

import (
	"time"

	"github.com/go-i2p/go-onion/lib/onion"
)

// Outcome is the state of the most recent layer a relay handled.
type Outcome string

const (
	OutcomeReceived  Outcome = "received"
	OutcomeForwarded Outcome = "forwarded"
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
)

// Diagnostics is a read-only snapshot of the last layer a relay processed.
// Snapshots are never mutated after being published.
type Diagnostics struct {
	Kind               onion.Kind
	ReceivedCiphertext []byte
	ReceivedPlaintext  []byte
	// ForwardTarget is the next-hop string for RELAY layers and the
	// recipient id for FINAL layers.
	ForwardTarget string
	Outcome       Outcome
	Error         string
	UpdatedAt     time.Time
}

// with returns a modified copy of d.
func (d *Diagnostics) with(mutate func(*Diagnostics)) *Diagnostics {
	next := *d
	mutate(&next)
	return &next
}
