package vfs

import (
	"container/list"
	"sync"
)

// fifoCache is a bounded, insertion-ordered cache: once maxEntries is
// reached, the oldest entry is evicted to make room for a new one.
// maxEntries <= 0 means unbounded (used for the head cache, which is
// naturally self-limiting since every entry is capped at HeadBytes).
type fifoCache[K comparable, V any] struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List
	entries    map[K]*list.Element
}

type fifoEntry[K comparable, V any] struct {
	key   K
	value V
}

func newFIFOCache[K comparable, V any](maxEntries int) *fifoCache[K, V] {
	return &fifoCache[K, V]{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[K]*list.Element),
	}
}

func (c *fifoCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	return el.Value.(*fifoEntry[K, V]).value, true
}

func (c *fifoCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*fifoEntry[K, V]).value = value
		return
	}

	el := c.order.PushBack(&fifoEntry[K, V]{key: key, value: value})
	c.entries[key] = el

	if c.maxEntries > 0 {
		for c.order.Len() > c.maxEntries {
			c.evictOldestLocked()
		}
	}
}

func (c *fifoCache[K, V]) evictOldestLocked() {
	oldest := c.order.Front()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.entries, oldest.Value.(*fifoEntry[K, V]).key)
}

// readCache is the budgeted full-body cache: admission is gated by
// both max file size and max file count, with FIFO eviction once the
// count budget is exhausted.
type readCache struct {
	mu          sync.Mutex
	maxFileSize int64
	maxCount    int
	order       *list.List
	entries     map[uint64]*list.Element
}

type readCacheEntry struct {
	ino  uint64
	data []byte
}

func newReadCache(maxFileSize int64, maxCount int) *readCache {
	return &readCache{
		maxFileSize: maxFileSize,
		maxCount:    maxCount,
		order:       list.New(),
		entries:     make(map[uint64]*list.Element),
	}
}

func (c *readCache) Get(ino uint64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[ino]
	if !ok {
		return nil, false
	}
	return el.Value.(*readCacheEntry).data, true
}

// Put admits data under ino unless it exceeds maxFileSize, in which
// case it is silently not cached (served once from the cold path
// every time).
func (c *readCache) Put(ino uint64, data []byte) {
	if c.maxFileSize > 0 && int64(len(data)) > c.maxFileSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[ino]; ok {
		el.Value.(*readCacheEntry).data = data
		return
	}

	el := c.order.PushBack(&readCacheEntry{ino: ino, data: data})
	c.entries[ino] = el

	if c.maxCount > 0 {
		for c.order.Len() > c.maxCount {
			oldest := c.order.Front()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*readCacheEntry).ino)
		}
	}
}
