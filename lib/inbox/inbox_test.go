package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverAndLast(t *testing.T) {
	in := New(42, 4)
	_, ok := in.Last()
	assert.False(t, ok)

	in.Deliver("a")
	msg := in.Deliver("hi")
	assert.Equal(t, 42, msg.RecipientID)

	last, ok := in.Last()
	require.True(t, ok)
	assert.Equal(t, "hi", last.Content)
	assert.Equal(t, 2, in.Len())
	assert.Equal(t, 42, in.Owner())
}

func TestCapacityDropsOldest(t *testing.T) {
	in := New(1, 2)
	in.Deliver("one")
	in.Deliver("two")
	in.Deliver("three")

	msgs := in.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Content)
	assert.Equal(t, "three", msgs[1].Content)
}

func TestZeroCapacityKeepsLatest(t *testing.T) {
	in := New(1, 0)
	in.Deliver("x")
	in.Deliver("y")
	assert.Equal(t, 1, in.Len())
	last, _ := in.Last()
	assert.Equal(t, "y", last.Content)
}
