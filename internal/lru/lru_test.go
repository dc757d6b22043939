package lru

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Evicts(t *testing.T) {
	cache := New[string, int](2)
	cache.Set("a", 1)
	cache.Set("b", 2)
	_, _ = cache.Get("a")
	cache.Set("c", 3)
	_, ok := cache.Get("b")
	assert.False(t, ok)
	value, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
	assert.Equal(t, 2, cache.Len())
	cache.Delete("a")
	assert.Equal(t, 1, cache.Len())
}

func TestCache_GetOrCreate(t *testing.T) {
	cache := New[string, int](0)
	calls := 0
	create := func() (int, error) {
		calls++
		return 7, nil
	}
	value, err := cache.GetOrCreate("k", create)
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	value, err = cache.GetOrCreate("k", create)
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, 1, calls)

	_, err = cache.GetOrCreate("e", func() (int, error) { return 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	_, ok := cache.Get("e")
	assert.False(t, ok)
}
