package delegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulticast_AddBroadcastRemove(t *testing.T) {
	t.Parallel()

	m := New[int]("test")
	var got []int

	h := m.Add(func(v int) { got = append(got, v) })
	require.True(t, h.IsValid())
	assert.Equal(t, 1, m.Len())

	m.Broadcast(7)
	m.Broadcast(8)
	assert.Equal(t, []int{7, 8}, got)

	assert.True(t, m.Remove(h))
	assert.Equal(t, 0, m.Len())

	m.Broadcast(9)
	assert.Equal(t, []int{7, 8}, got)
}

func TestMulticast_DoubleRemoveIsRejected(t *testing.T) {
	t.Parallel()

	m := New[string]("test")
	h := m.Add(func(string) {})

	assert.True(t, m.Remove(h))
	assert.False(t, m.Remove(h))
	assert.False(t, m.Remove(Handle{}))
}

func TestMulticast_LeakedRegistrationFiresTwice(t *testing.T) {
	t.Parallel()

	m := New[bool]("create")
	calls := 0
	m.Add(func(bool) { calls++ })
	m.Add(func(bool) { calls++ })

	m.Broadcast(true)
	assert.Equal(t, 2, calls)
}

func TestMulticast_RemoveInsideHandler(t *testing.T) {
	t.Parallel()

	m := New[int]("oneshot")
	calls := 0

	var h Handle
	h = m.Add(func(int) {
		calls++
		m.Remove(h)
	})

	m.Broadcast(1)
	m.Broadcast(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, m.Len())
}
