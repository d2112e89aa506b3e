// Package pagecache is a minimal enclosing cache for a swapper.Swapper: just
// enough LRU bookkeeping to demand-fault pages in and call Evicted on the
// way out. It does not implement dirty tracking, write-back scheduling, or
// any real replacement policy beyond strict least-recently-used order —
// those are out of scope for the substrate this package exercises.
package pagecache

import (
	"container/list"
	"sync"

	"github.com/keelsong/pageswap/internal/swapper"
)

// Cache holds up to Capacity pages from one Swapper in memory, evicting the
// least recently used page when a fault would exceed that bound.
type Cache struct {
	mu       sync.Mutex
	sw       *swapper.Swapper
	pageSize int
	capacity int

	order   *list.List // front = most recently used
	entries map[int64]*list.Element
}

type entry struct {
	pageID int64
	buf    []byte
}

// New returns a Cache fronting sw, holding at most capacity pages of
// pageSize bytes each. It leaves sw's eviction callback as it is: each
// eviction is reported through sw.Evicted, which calls whatever callback
// sw was opened with.
func New(sw *swapper.Swapper, pageSize, capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache{
		sw:       sw,
		pageSize: pageSize,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[int64]*list.Element),
	}
	return c
}

// Get returns the current contents of pageID, faulting it in from the
// swapper on a miss and evicting the least recently used page first if the
// cache is full.
func (c *Cache) Get(pageID int64) ([]byte, error) {
	c.mu.Lock()
	if el, ok := c.entries[pageID]; ok {
		c.order.MoveToFront(el)
		buf := append([]byte(nil), el.Value.(*entry).buf...)
		c.mu.Unlock()
		return buf, nil
	}
	c.mu.Unlock()

	buf := make([]byte, c.pageSize)
	if _, err := c.sw.Read(pageID, buf); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.insertLocked(pageID, buf)
	c.mu.Unlock()
	return buf, nil
}

// Put writes buf through to the swapper and updates the cached copy,
// evicting if this is a new page and the cache is full.
func (c *Cache) Put(pageID int64, buf []byte) error {
	if _, err := c.sw.Write(pageID, buf); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[pageID]; ok {
		el.Value.(*entry).buf = append([]byte(nil), buf...)
		c.order.MoveToFront(el)
		return nil
	}
	c.insertLocked(pageID, buf)
	return nil
}

// insertLocked adds pageID's buffer to the front of the LRU list, evicting
// the tail first if the cache is already at capacity. Caller holds c.mu.
func (c *Cache) insertLocked(pageID int64, buf []byte) {
	if c.order.Len() >= c.capacity {
		tail := c.order.Back()
		if tail != nil {
			evicted := tail.Value.(*entry)
			c.order.Remove(tail)
			delete(c.entries, evicted.pageID)
			c.sw.Evicted(evicted.pageID)
		}
	}
	el := c.order.PushFront(&entry{pageID: pageID, buf: append([]byte(nil), buf...)})
	c.entries[pageID] = el
}

// Len reports how many pages are currently resident.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
