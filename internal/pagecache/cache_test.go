package pagecache

import (
	"bytes"
	"testing"

	"github.com/keelsong/pageswap/internal/swapper"
)

func newTestCache(t *testing.T, pageSize, capacity int) (*Cache, *swapper.Swapper) {
	t.Helper()
	fs := swapper.NewMemFileSystem()
	sw, err := swapper.Open(fs, "cache.db", swapper.Config{PageSize: uint32(pageSize)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { sw.Close() })
	return New(sw, pageSize, capacity), sw
}

func TestGetFaultsFromSwapper(t *testing.T) {
	c, sw := newTestCache(t, 128, 4)

	want := bytes.Repeat([]byte{0x5}, 128)
	if _, err := sw.Write(2, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := c.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get returned wrong contents")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestGetHitsCacheWithoutRereading(t *testing.T) {
	c, sw := newTestCache(t, 64, 4)

	buf := bytes.Repeat([]byte{0x1}, 64)
	if err := c.Put(1, buf); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Mutate the backing store directly to prove a cache hit does not
	// re-read through the swapper.
	other := bytes.Repeat([]byte{0x2}, 64)
	if _, err := sw.Write(1, other); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Fatalf("Get should have returned the cached copy, not the swapper's current contents")
	}
}

func TestEvictionOnCapacity(t *testing.T) {
	var evicted []int64
	fs := swapper.NewMemFileSystem()
	sw, err := swapper.Open(fs, "evict.db", swapper.Config{
		PageSize: 32,
		OnEvict:  func(p int64) { evicted = append(evicted, p) },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sw.Close()

	c := New(sw, 32, 2)
	buf := make([]byte, 32)
	for _, p := range []int64{0, 1, 2} {
		if err := c.Put(p, buf); err != nil {
			t.Fatalf("Put(%d): %v", p, err)
		}
	}

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if len(evicted) != 1 || evicted[0] != 0 {
		t.Fatalf("evicted = %v, want [0] (the least recently used page)", evicted)
	}
}

func TestGetPromotesToMostRecentlyUsed(t *testing.T) {
	var evicted []int64
	fs := swapper.NewMemFileSystem()
	sw, err := swapper.Open(fs, "lru.db", swapper.Config{
		PageSize: 16,
		OnEvict:  func(p int64) { evicted = append(evicted, p) },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sw.Close()

	c := New(sw, 16, 2)
	buf := make([]byte, 16)
	if err := c.Put(0, buf); err != nil {
		t.Fatalf("Put(0): %v", err)
	}
	if err := c.Put(1, buf); err != nil {
		t.Fatalf("Put(1): %v", err)
	}

	// Touching page 0 makes page 1 the least recently used.
	if _, err := c.Get(0); err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if err := c.Put(2, buf); err != nil {
		t.Fatalf("Put(2): %v", err)
	}

	if len(evicted) != 1 || evicted[0] != 1 {
		t.Fatalf("evicted = %v, want [1]", evicted)
	}
}
