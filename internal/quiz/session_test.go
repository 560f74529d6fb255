package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStorePutAndConsume(t *testing.T) {
	store := NewSessionStore()
	questions := Fallback()

	store.Put(1, questions)
	assert.Equal(t, 1, store.Len())

	got, ok := store.GetAndRemove(1)
	require.True(t, ok)
	assert.Equal(t, questions, got)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStoreSingleUse(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, Fallback())

	_, ok := store.GetAndRemove(1)
	require.True(t, ok)

	_, ok = store.GetAndRemove(1)
	assert.False(t, ok)
}

func TestSessionStoreOverwrite(t *testing.T) {
	store := NewSessionStore()

	first := []Question{{Question: "q1", Answer: "A"}}
	second := []Question{{Question: "q2", Answer: "B"}}

	store.Put(1, first)
	store.Put(1, second)
	assert.Equal(t, 1, store.Len())

	got, ok := store.GetAndRemove(1)
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestSessionStoreIsolatedPerUser(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, []Question{{Question: "user1"}})
	store.Put(2, []Question{{Question: "user2"}})

	got, ok := store.GetAndRemove(1)
	require.True(t, ok)
	assert.Equal(t, "user1", got[0].Question)

	// Consuming user 1's quiz leaves user 2's untouched.
	got, ok = store.GetAndRemove(2)
	require.True(t, ok)
	assert.Equal(t, "user2", got[0].Question)
}

func TestSessionStoreMissingUser(t *testing.T) {
	store := NewSessionStore()

	_, ok := store.GetAndRemove(99)
	assert.False(t, ok)
}
