package onion

import (
	"errors"

	"github.com/samber/oops"
)

// Kind tags a Layer as routing instructions or terminal payload.
type Kind string

const (
	KindRelay Kind = "RELAY"
	KindFinal Kind = "FINAL"
)

// ErrMalformedLayer is returned for layers that break the Layer invariants or
// cannot be decoded.
var ErrMalformedLayer = errors.New("malformed onion layer")

// Layer is one level of nested encryption, addressed to one hop.
// NextHop is present if and only if Kind is KindRelay.
type Layer struct {
	Kind             Kind   `json:"kind" cbor:"1,keyasint"`
	EncryptedKey     []byte `json:"encryptedKey" cbor:"2,keyasint"`
	EncryptedPayload []byte `json:"encryptedPayload" cbor:"3,keyasint"`
	NextHop          string `json:"nextHop,omitempty" cbor:"4,keyasint,omitempty"`
}

// Terminal is the plaintext carried by a FINAL layer.
type Terminal struct {
	RecipientID int    `json:"recipientId" cbor:"1,keyasint"`
	Content     string `json:"content" cbor:"2,keyasint"`
}

// Validate checks the Layer invariants.
func (l *Layer) Validate() error {
	if l == nil {
		return oops.Errorf("%w: nil layer", ErrMalformedLayer)
	}
	switch l.Kind {
	case KindRelay:
		if l.NextHop == "" {
			return oops.Errorf("%w: RELAY layer without next hop", ErrMalformedLayer)
		}
	case KindFinal:
		if l.NextHop != "" {
			return oops.Errorf("%w: FINAL layer with next hop %q", ErrMalformedLayer, l.NextHop)
		}
	default:
		return oops.Errorf("%w: unknown kind %q", ErrMalformedLayer, l.Kind)
	}
	if len(l.EncryptedKey) == 0 {
		return oops.Errorf("%w: missing encrypted key", ErrMalformedLayer)
	}
	if len(l.EncryptedPayload) == 0 {
		return oops.Errorf("%w: missing encrypted payload", ErrMalformedLayer)
	}
	return nil
}

// Peeled is the result of removing one layer: exactly one of Next and
// Terminal is set, matching the Kind of the layer that was peeled.
type Peeled struct {
	Kind      Kind
	NextHop   string
	Next      *Layer
	Terminal  *Terminal
	Plaintext []byte
}
