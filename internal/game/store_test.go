// internal/game/store_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLazyCreation(t *testing.T) {
	s := NewStore()
	created := 0
	s.RegisterFactory("typing", func(name string) Instance {
		created++
		return NewEngine(name, &mockBroadcaster{}, testLogger())
	})

	inst, ok := s.Get("typing")
	require.True(t, ok)
	assert.Equal(t, "typing", inst.Name())
	assert.Equal(t, 1, created)

	// Repeated lookups reuse the instance.
	again, ok := s.Get("typing")
	require.True(t, ok)
	assert.Same(t, inst, again)
	assert.Equal(t, 1, created)
}

func TestStoreUnknownName(t *testing.T) {
	s := NewStore()
	inst, ok := s.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, inst)
}

func TestStoreNamesAndInstances(t *testing.T) {
	s := NewStore()
	s.RegisterFactory("a", func(name string) Instance {
		return NewFusionGame(name, &mockBroadcaster{}, testLogger(), nil)
	})
	s.RegisterFactory("b", func(name string) Instance {
		return NewFusionGame(name, &mockBroadcaster{}, testLogger(), nil)
	})

	assert.ElementsMatch(t, []string{"a", "b"}, s.Names())
	assert.Empty(t, s.Instances())

	s.Get("a")
	require.Len(t, s.Instances(), 1)
}
