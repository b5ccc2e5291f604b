// Package onion implements layered (onion) encryption for go-onion circuits.
//
// # Layers
//
// A Layer is the unit sent between two hops. It carries a session key
// wrapped under the receiving hop's RSA public key and a payload encrypted
// under that session key with AES-256-CBC:
//
//   - RELAY layers also name the next hop; their decrypted payload is the
//     CBOR encoding of the next Layer.
//   - FINAL layers name no next hop; their decrypted payload is the CBOR
//     encoding of a Terminal message {recipientId, content}.
//
// # Construction
//
// Builder wraps from the innermost layer outward. Each layer's session key
// is fresh and is encrypted only under the public key of the hop that will
// peel that layer, so a relay learns its successor and nothing else.
//
//	b, _ := onion.NewBuilder(addressing)
//	outer, err := b.Build(42, "hi", []onion.Hop{entry, middle, exit})
//
// # Peeling
//
// Peel removes one layer with a relay's private key and returns either the
// next Layer or the Terminal message.
package onion
