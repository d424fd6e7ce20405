package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocks_SerializesSameKey(t *testing.T) {
	locks := newKeyedLocks()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			locks.Lock("order:1")
			defer locks.Unlock("order:1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedLocks_IndependentKeysDoNotBlock(t *testing.T) {
	locks := newKeyedLocks()

	locks.Lock("order:1")
	done := make(chan struct{})
	go func() {
		locks.Lock("order:2")
		locks.Unlock("order:2")
		close(done)
	}()
	<-done
	locks.Unlock("order:1")
}

func TestKeyedLocks_EntriesAreReleased(t *testing.T) {
	locks := newKeyedLocks()

	locks.Lock("promo:SALE10")
	locks.Unlock("promo:SALE10")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.held, "released keys must not leak")
}
