package transport

import (
	"errors"
	"net/http"

	"github.com/go-i2p/go-onion/lib/config"
	"github.com/go-i2p/go-onion/lib/crypto/types"
	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/onion"
	"github.com/go-i2p/go-onion/lib/relay"
	"github.com/go-i2p/go-onion/lib/sender"
)

// ErrForwarding is relay.ErrForwarding, re-exported for callers that only
// deal with the transport.
var ErrForwarding = relay.ErrForwarding

// ErrBadRequest is returned for request bodies that cannot be decoded.
var ErrBadRequest = errors.New("bad request")

// statusFor maps an error to the HTTP status reported to the caller.
// A forwarding failure wins over whatever caused it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, relay.ErrForwarding):
		return http.StatusBadGateway
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrDecryption),
		errors.Is(err, types.ErrKeyFormat),
		errors.Is(err, onion.ErrMalformedLayer),
		errors.Is(err, directory.ErrInvalidNode),
		errors.Is(err, config.ErrInvalidHop),
		errors.Is(err, sender.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrConflictingKey):
		return http.StatusConflict
	case errors.Is(err, keys.ErrKeyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
