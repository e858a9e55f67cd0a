package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPalette_RoundRobin(t *testing.T) {
	p := NewPalette()

	for i := 0; i < len(DefaultColors)*2; i++ {
		assert.Equal(t, DefaultColors[i%len(DefaultColors)], p.Next())
	}
}

func TestPalette_DistinctColors(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range DefaultColors {
		assert.False(t, seen[c], "duplicate color %s", c)
		seen[c] = true
	}
	assert.Len(t, DefaultColors, 14)
}

func TestPalette_Concurrent(t *testing.T) {
	p := NewPalette("#000000", "#FFFFFF")

	var mu sync.Mutex
	counts := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := p.Next()
			mu.Lock()
			counts[c]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counts["#000000"])
	assert.Equal(t, 50, counts["#FFFFFF"])
}
