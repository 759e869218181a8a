package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	km := New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("emp-1")
			counter++
			km.Unlock("emp-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestDistinctKeysAreIndependent(t *testing.T) {
	km := New()

	km.Lock("emp-1")
	defer km.Unlock("emp-1")

	done := make(chan struct{})
	go func() {
		km.Lock("emp-2")
		km.Unlock("emp-2")
		close(done)
	}()

	<-done
}

func TestTryLock(t *testing.T) {
	km := New()

	assert.True(t, km.TryLock("period-1"))
	assert.False(t, km.TryLock("period-1"))
	assert.True(t, km.TryLock("period-2"))

	km.Unlock("period-1")
	km.Unlock("period-2")

	assert.True(t, km.TryLock("period-1"))
	km.Unlock("period-1")
}

func TestEntriesAreReleased(t *testing.T) {
	km := New()

	km.Lock("a")
	km.Unlock("a")
	km.TryLock("b")
	km.Unlock("b")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
