package directory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/go-onion/lib/crypto/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyText(t *testing.T) string {
	t.Helper()
	pub, _, err := rsa.GenerateKeyPair(rsa.MinKeyBits)
	require.NoError(t, err)
	return pub.Export()
}

func TestRegisterAndListInInsertionOrder(t *testing.T) {
	d := New()
	k1, k2, k3 := newKeyText(t), newKeyText(t), newKeyText(t)

	for _, n := range []Node{{3, k3}, {1, k1}, {2, k2}} {
		created, err := d.Register(n.NodeID, n.PublicKey)
		require.NoError(t, err)
		assert.True(t, created)
	}

	assert.Equal(t, []Node{{3, k3}, {1, k1}, {2, k2}}, d.ListNodes())
	assert.Equal(t, 3, d.Size())

	n, ok := d.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, k1, n.PublicKey)
	_, ok = d.Lookup(99)
	assert.False(t, ok)
}

func TestDuplicateRegistration(t *testing.T) {
	d := New()
	key := newKeyText(t)

	created, err := d.Register(1, key)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = d.Register(1, key)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, d.Size())

	_, err = d.Register(1, newKeyText(t))
	assert.ErrorIs(t, err, ErrConflictingKey)
	assert.Equal(t, key, d.ListNodes()[0].PublicKey)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	d := New()

	_, err := d.Register(-1, newKeyText(t))
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = d.Register(1, "not-a-key")
	assert.ErrorIs(t, err, types.ErrKeyFormat)

	assert.Zero(t, d.Size())
}

func TestListNodesReturnsSnapshot(t *testing.T) {
	d := New()
	_, err := d.Register(1, newKeyText(t))
	require.NoError(t, err)

	snap := d.ListNodes()
	snap[0].NodeID = 500
	assert.Equal(t, 1, d.ListNodes()[0].NodeID)
}

func TestConcurrentRegistration(t *testing.T) {
	d := New()
	keys := make([]string, 8)
	for i := range keys {
		keys[i] = newKeyText(t)
	}

	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func(id int, key string) {
			defer wg.Done()
			_, err := d.Register(id, key)
			assert.NoError(t, err, fmt.Sprintf("node %d", id))
		}(i, k)
	}
	wg.Wait()
	assert.Equal(t, len(keys), d.Size())
}
