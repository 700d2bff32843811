package auth

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevocationRegistry(t *testing.T) {
	r := NewRevocationRegistry()

	assert.False(t, r.IsRevoked("token-a"))

	r.Revoke("token-a")
	assert.True(t, r.IsRevoked("token-a"))
	assert.False(t, r.IsRevoked("token-b"))

	// Idempotent
	r.Revoke("token-a")
	assert.True(t, r.IsRevoked("token-a"))
	assert.Equal(t, 1, r.Len())

	r.Clear()
	assert.False(t, r.IsRevoked("token-a"))
	assert.Equal(t, 0, r.Len())
}

func TestRevocationRegistryConcurrent(t *testing.T) {
	r := NewRevocationRegistry()

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("token-%d", i)
			r.Revoke(token)
			// Revoke must be visible to the caller immediately.
			assert.True(t, r.IsRevoked(token))
			for j := 0; j < 100; j++ {
				r.IsRevoked(fmt.Sprintf("token-%d", j%workers))
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, workers, r.Len())
}
