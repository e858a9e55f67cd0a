package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetAdd(t *testing.T) {
	c, err := NewLRU[string, string](2)
	require.NoError(t, err)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Add("a", "Madrid")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "Madrid", v)

	assert.Equal(t, 1, c.Hits.Value())
	assert.Equal(t, 1, c.Misses.Value())
}

func TestLRU_Evicts(t *testing.T) {
	c, err := NewLRU[int, int](2)
	require.NoError(t, err)

	c.Add(1, 1)
	c.Add(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Add(3, 3)

	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_ZeroSize(t *testing.T) {
	c, err := NewLRU[int, int](0)
	require.NoError(t, err)

	c.Add(1, 1)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Purge(t *testing.T) {
	c, _ := NewLRU[int, int](4)
	c.Add(1, 1)
	c.Get(1)
	c.Purge()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, c.Hits.Value())
}

func TestSafeCounter_Concurrent(t *testing.T) {
	var c SafeCounter
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Value())

	c.Set(7)
	assert.Equal(t, 7, c.Value())
}
