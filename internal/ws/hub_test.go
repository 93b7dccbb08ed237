package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndResolve(t *testing.T) {
	h := NewHub()
	c := NewClient(nil)

	h.Register("user-1", c)

	got, ok := h.Resolve("user-1")
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = h.Resolve("user-2")
	assert.False(t, ok)
}

func TestLastRegistrationWins(t *testing.T) {
	h := NewHub()
	first := NewClient(nil)
	second := NewClient(nil)

	h.Register("user-1", first)
	h.Register("user-1", second)

	got, ok := h.Resolve("user-1")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, h.Count())
}

func TestUnregisterRemovesOwnMapping(t *testing.T) {
	h := NewHub()
	c := NewClient(nil)
	h.Register("user-1", c)

	h.Unregister(c)

	_, ok := h.Resolve("user-1")
	assert.False(t, ok)
}

func TestStaleUnregisterKeepsCurrentMapping(t *testing.T) {
	h := NewHub()
	stale := NewClient(nil)
	current := NewClient(nil)

	h.Register("user-1", stale)
	h.Register("user-1", current)

	// the stale connection closes after being superseded
	h.Unregister(stale)

	got, ok := h.Resolve("user-1")
	require.True(t, ok)
	assert.Same(t, current, got)
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	h := NewHub()
	h.Register("user-1", NewClient(nil))

	h.Unregister(NewClient(nil))

	assert.Equal(t, 1, h.Count())
}
