package onion

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/oops"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxNestedLevels:   16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// MarshalLayer encodes a valid layer to deterministic CBOR.
func MarshalLayer(l *Layer) ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	out, err := encMode.Marshal(l)
	if err != nil {
		return nil, oops.Wrapf(err, "encode layer")
	}
	return out, nil
}

// UnmarshalLayer decodes and validates a CBOR layer.
func UnmarshalLayer(data []byte) (*Layer, error) {
	var l Layer
	if err := decMode.Unmarshal(data, &l); err != nil {
		return nil, oops.Errorf("%w: %v", ErrMalformedLayer, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// MarshalTerminal encodes a terminal message to deterministic CBOR.
func MarshalTerminal(t *Terminal) ([]byte, error) {
	out, err := encMode.Marshal(t)
	if err != nil {
		return nil, oops.Wrapf(err, "encode terminal message")
	}
	return out, nil
}

// UnmarshalTerminal decodes a CBOR terminal message.
func UnmarshalTerminal(data []byte) (*Terminal, error) {
	var t Terminal
	if err := decMode.Unmarshal(data, &t); err != nil {
		return nil, oops.Errorf("%w: terminal message: %v", ErrMalformedLayer, err)
	}
	return &t, nil
}
