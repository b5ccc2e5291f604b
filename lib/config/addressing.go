package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/samber/oops"
)

const (
	// HopWidth is the fixed number of decimal digits in a next-hop string.
	HopWidth = 5
	maxPort  = 65535
)

// ErrInvalidHop is returned for next-hop strings that are not HopWidth digits
// naming a valid port.
var ErrInvalidHop = errors.New("invalid next hop")

// Addressing maps node ids to network addresses: host plus BasePort+id.
type Addressing struct {
	Host     string
	BasePort int
}

// Port returns the port a node listens on.
func (a Addressing) Port(nodeID int) int {
	return a.BasePort + nodeID
}

// NodeAddress returns host:port for a node id.
func (a Addressing) NodeAddress(nodeID int) string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port(nodeID)))
}

// NextHop returns the fixed-width next-hop string carried inside a RELAY layer.
func (a Addressing) NextHop(nodeID int) string {
	return fmt.Sprintf("%0*d", HopWidth, a.Port(nodeID))
}

// HopAddress resolves a next-hop string to host:port.
func (a Addressing) HopAddress(hop string) (string, error) {
	port, err := ParseNextHop(hop)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(port)), nil
}

// ParseNextHop validates a next-hop string and returns the port it names.
func ParseNextHop(hop string) (int, error) {
	if len(hop) != HopWidth {
		return 0, oops.Errorf("%w: %q must be %d digits", ErrInvalidHop, hop, HopWidth)
	}
	for i := 0; i < len(hop); i++ {
		if hop[i] < '0' || hop[i] > '9' {
			return 0, oops.Errorf("%w: %q contains a non-digit", ErrInvalidHop, hop)
		}
	}
	port, _ := strconv.Atoi(hop)
	if port < 1 || port > maxPort {
		return 0, oops.Errorf("%w: port %d out of range", ErrInvalidHop, port)
	}
	return port, nil
}
