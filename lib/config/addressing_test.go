package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressing(t *testing.T) {
	a := Addressing{Host: "127.0.0.1", BasePort: 5000}

	assert.Equal(t, 5002, a.Port(2))
	assert.Equal(t, "127.0.0.1:5042", a.NodeAddress(42))
	assert.Equal(t, "05002", a.NextHop(2))

	addr, err := a.HopAddress(a.NextHop(7))
	require.NoError(t, err)
	assert.Equal(t, a.NodeAddress(7), addr)
}

func TestNextHopIsFixedWidth(t *testing.T) {
	a := Addressing{Host: "localhost", BasePort: 80}
	assert.Equal(t, "00081", a.NextHop(1))
	port, err := ParseNextHop(a.NextHop(1))
	require.NoError(t, err)
	assert.Equal(t, 81, port)
}

func TestParseNextHopRejectsMalformed(t *testing.T) {
	for _, hop := range []string{"", "5001", "050011", "05a01", " 5001", "00000", "99999", "-5001"} {
		t.Run(hop, func(t *testing.T) {
			_, err := ParseNextHop(hop)
			assert.ErrorIs(t, err, ErrInvalidHop)
		})
	}
}
