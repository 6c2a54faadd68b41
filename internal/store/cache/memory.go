package cache

import (
	"fmt"
	"sync/atomic"
)

// memoryPool tracks byte-level memory usage against a fixed budget, the way
// the teacher's storage.MemoryPool does for its LRU store — trimmed to just
// the accounting a single in-memory TTL cache needs (no pressure callbacks,
// no cross-store coordination).
type memoryPool struct {
	maxSize      int64
	currentUsage int64 // atomic
}

func newMemoryPool(maxSize int64) *memoryPool {
	return &memoryPool{maxSize: maxSize}
}

func (mp *memoryPool) allocate(size int64) error {
	if size <= 0 {
		return nil
	}
	if atomic.LoadInt64(&mp.currentUsage)+size > mp.maxSize {
		return fmt.Errorf("cache: insufficient memory: need %d bytes, available %d", size, mp.availableSpace())
	}
	atomic.AddInt64(&mp.currentUsage, size)
	return nil
}

func (mp *memoryPool) free(size int64) {
	if size <= 0 {
		return
	}
	atomic.AddInt64(&mp.currentUsage, -size)
}

func (mp *memoryPool) availableSpace() int64 {
	avail := mp.maxSize - atomic.LoadInt64(&mp.currentUsage)
	if avail < 0 {
		return 0
	}
	return avail
}

func (mp *memoryPool) pressure() float64 {
	if mp.maxSize == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&mp.currentUsage)) / float64(mp.maxSize)
}
