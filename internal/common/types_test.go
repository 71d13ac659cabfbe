package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationKey_Pair(t *testing.T) {
	lo, hi := NewConversationKey(42, 7).Pair()
	assert.Equal(t, uint64(7), lo)
	assert.Equal(t, uint64(42), hi)

	lo, hi = NewConversationKey(7, 42).Pair()
	assert.Equal(t, uint64(7), lo)
	assert.Equal(t, uint64(42), hi)
}

func TestConversationKey_SamePair(t *testing.T) {
	alice := NewConversationKey(1, 2)
	bob := NewConversationKey(2, 1)
	other := NewConversationKey(1, 3)

	assert.True(t, alice.SamePair(bob))
	assert.True(t, bob.SamePair(alice))
	assert.False(t, alice.SamePair(other))
}

func TestConversationKey_Contains(t *testing.T) {
	key := NewConversationKey(1, 2)
	assert.True(t, key.Contains(1))
	assert.True(t, key.Contains(2))
	assert.False(t, key.Contains(3))
}
