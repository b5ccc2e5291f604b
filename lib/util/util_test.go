package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseAllReverseOrder(t *testing.T) {
	var order []int
	RegisterCloser(closerFunc(func() error { order = append(order, 1); return nil }))
	RegisterCloser(closerFunc(func() error { order = append(order, 2); return errors.New("boom") }))
	RegisterCloser(nil)

	CloseAll()
	assert.Equal(t, []int{2, 1}, order)

	CloseAll()
	assert.Equal(t, []int{2, 1}, order, "list is cleared")
}

func TestUserHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.NotEmpty(t, UserHome())
}
